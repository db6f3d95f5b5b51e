package config

import "os"

func IsDebug() bool {
	return os.Getenv("WISH_DEBUG") == "1"
}
