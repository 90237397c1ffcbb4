package model

import (
	"errors"
)

var (
	ErrFilesystem = errors.New("filesystem error")
	ErrSpawn      = errors.New("spawn error")

	ErrConfigMissing   = errors.New("configuration file not found")
	ErrConfigMalformed = errors.New("bad configuration file")
	ErrConfigAmbiguous = errors.New("incorrect configuration for the compiler flags")
	ErrConfigUnknown   = errors.New("configuration error")
)
