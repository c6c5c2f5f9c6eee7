package main

import (
	"fmt"

	"github.com/kvlite/kvlite"
	"github.com/kvlite/kvlite/internal/engine"
	"github.com/kvlite/kvlite/internal/settings"
)

func openEngine() (*engine.Engine, error) {
	s, err := settings.Load(configPath)
	if err != nil {
		return nil, err
	}

	var driver kvlite.Driver
	switch driverName {
	case "sqlite":
		driver = kvlite.DriverSQLite
	case "mysql":
		driver = kvlite.DriverMySQL
	case "dolt":
		driver = kvlite.DriverDolt
	default:
		return nil, fmt.Errorf("kvlitectl: unknown driver %q", driverName)
	}

	return kvlite.Open(driver, s)
}
