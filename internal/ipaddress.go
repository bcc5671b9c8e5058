/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package internal

import (
	"net"
	"os"
)

// outboundIP dials out without sending any packets (UDP "connect" only
// resolves a route) purely to read back which local address the kernel
// would use, for nodes that have no configured hostname.
func outboundIP() (net.IP, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	return conn.LocalAddr().(*net.UDPAddr).IP, nil
}

// GetHostNameOrIP names the file rotation pattern's %{host}s token: the
// kernel-reported hostname, falling back to the outbound IP, falling back to
// "unknown" if neither can be resolved.
func GetHostNameOrIP() string {
	if host, err := os.Hostname(); err == nil {
		return host
	}
	if ip, err := outboundIP(); err == nil {
		return ip.String()
	}
	return "unknown"
}
