package fetcher

import (
	"errors"
	"fmt"
)

var (
	ErrUnresolved = errors.New("could not resolve channel reference")
	ErrUpstream   = errors.New("upstream unavailable")
	ErrNoChannel  = fmt.Errorf("%w: no channel information", ErrUpstream)
	ErrNoVideos   = fmt.Errorf("%w: no videos found", ErrUpstream)
)
