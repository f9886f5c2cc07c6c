//go:build !cgo
// +build !cgo

package embedding

import "errors"

// ONNXConfig describes a local sentence-embedding model.
type ONNXConfig struct {
	ModelPath  string
	Dimensions int
	MaxTokens  int
	OutputName string
}

var errONNXUnavailable = errors.New("the onnx embedding provider needs a cgo build with onnxruntime installed")

func newONNXEmbedder(ONNXConfig) (Embedder, error) {
	return nil, errONNXUnavailable
}
