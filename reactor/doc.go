// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor bridges kernel timer handles into hub notifications.
// One dedicated real-time service thread multiplexes every registered timer
// through a bounded readiness multiplexer; fired timers are resolved to their
// owning observable container and handed to the hub synchronously. This
// deliberately avoids a separate thread pool for timer delivery.
package reactor
