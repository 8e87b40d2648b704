// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package api defines the shared contracts of the statemux library: the observable
// container surface, the notification trigger sink, and the kernel readiness
// abstraction the timer reactor is built on. The package is deliberately free of
// third-party imports so every other package can depend on it without cycles.
package api
