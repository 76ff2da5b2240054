// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package controller

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/host"
)

// MaxIdentityLen bounds the hostname-derived controller identity, in bytes.
const MaxIdentityLen = 255

// HostnameFunc returns the network name of the machine.
type HostnameFunc func(ctx context.Context) (string, error)

// SystemHostname asks the host for its name, falling back to the kernel
// hostname when the host info is unavailable.
func SystemHostname(ctx context.Context) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err == nil && info.Hostname != "" {
		return info.Hostname, nil
	}
	return os.Hostname()
}

func truncateIdentity(name string) string {
	if len(name) > MaxIdentityLen {
		return name[:MaxIdentityLen]
	}
	return name
}
