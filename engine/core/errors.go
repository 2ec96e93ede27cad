package core

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrSwapchainFormatChanged = errors.New("swapchain image (or depth) format has changed")
	ErrNoSuitableDevice       = errors.New("no physical device meets the requirements")
	ErrNoMemoryType           = errors.New("unable to find a suitable memory type")
	ErrInvalidSPIRV           = errors.New("invalid SPIR-V bytecode")
)
