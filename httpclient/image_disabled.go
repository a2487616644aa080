//go:build noimage

package httpclient

// ImageSupported reports whether this build can decode images. This build
// was compiled with the noimage tag, so FetchImage and DecodeImage do not
// exist.
const ImageSupported = false
