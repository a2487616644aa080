//go:build !noimage

package httpclient

import (
	"bytes"
	"image"

	// Registered image formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ImageSupported reports whether this build can decode images. Builds with
// the noimage tag drop FetchImage and DecodeImage entirely.
const ImageSupported = true

// DecodedImage is an image together with the name of the format it was
// decoded from ("png", "jpeg" or "gif").
type DecodedImage struct {
	Image  image.Image
	Format string
}

// ImageResponse pairs a decoded image with the HTTP metadata.
type ImageResponse struct {
	Image    image.Image
	Format   string
	Response *HTTPMetadata
}

// DecodeImage decodes data as an image in any registered format.
//
// The image decoders only tell us that decoding failed, so every failure
// is reported as ErrInvalidImageData.
func DecodeImage(data []byte) Result[DecodedImage] {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil || img == nil {
		return Failure[DecodedImage](ErrInvalidImageData)
	}
	return Success(DecodedImage{Image: img, Format: format})
}

// DecodeImageResponse decodes r's body as an image and keeps r's metadata.
func DecodeImageResponse(r *DataResponse) Result[*ImageResponse] {
	return FlatMap(DecodeImage(r.Data), func(d DecodedImage) Result[*ImageResponse] {
		return Success(&ImageResponse{Image: d.Image, Format: d.Format, Response: r.Response})
	})
}

// FetchImage dispatches the request and decodes a successful body as an
// image. Bodies that are not a decodable image fail with
// ErrInvalidImageData.
//
// Example:
//
//	req.FetchImage(func(res httpclient.Result[*httpclient.ImageResponse]) {
//	    if resp, ok := res.SuccessValue(); ok {
//	        fmt.Println(resp.Format, resp.Image.Bounds())
//	    }
//	})
func (r *Request) FetchImage(onComplete func(Result[*ImageResponse])) Task {
	return r.dispatch(func(res Result[*DataResponse]) func() {
		out := FlatMap(res, DecodeImageResponse)
		return func() { onComplete(out) }
	})
}
