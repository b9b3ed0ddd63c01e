package main

import (
	"log/slog"
	"os"

	"github.com/grafana/pyroscope-go"
)

// startProfiler ships continuous profiles to a Pyroscope server when
// PYROSCOPE_SERVER_ADDRESS is set. Opt-in; a missing address is not an error.
func startProfiler(logg *slog.Logger) {
	addr := os.Getenv("PYROSCOPE_SERVER_ADDRESS")
	if addr == "" {
		return
	}

	_, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "note-sage",
		ServerAddress:   addr,
		Logger:          nil,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		logg.Warn("pyroscope start failed", "err", err)
		return
	}
	logg.Info("pyroscope profiling enabled", "server", addr)
}
