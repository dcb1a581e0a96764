package config

import (
	"errors"

	"gbus/pkg/lib/xerror"
)

var (
	ErrReadConfigFile      = errors.New("read config file failed")
	ErrUnmarshalConfigFile = errors.New("unmarshal config file failed")
)

func errReadConfigFile(path string, err error) error {
	return xerror.Wrapf(ErrReadConfigFile, "%s: %v", path, err)
}

func errUnmarshalConfigFile(path string, err error) error {
	return xerror.Wrapf(ErrUnmarshalConfigFile, "%s: %v", path, err)
}
