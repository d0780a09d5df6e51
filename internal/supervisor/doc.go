// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

/*
Package supervisor provides process supervision for TubeFleet using suture v4.

The supervisor tree organizes all long-running services into four layers
for failure isolation:

	RootSupervisor ("tubefleet")
	├── DataSupervisor ("data-layer")
	│   ├── session cleanup loop
	│   ├── consent-state cleanup loop
	│   ├── audit retention loop
	│   └── login lockout sweeper
	├── WorkerSupervisor ("worker-layer")
	│   ├── recurrence materializer
	│   ├── subscription renewer
	│   ├── strike expirer
	│   ├── usage collector
	│   ├── comment syncer
	│   └── moderation scanner
	├── MessagingSupervisor ("messaging-layer")
	│   ├── event router
	│   ├── WebSocket hub + bus bridge
	│   ├── notification dispatcher
	│   └── webhook dispatcher
	└── APISupervisor ("api-layer")
	    └── HTTP server

A crash in a worker loop does not take down WebSocket connections, and
messaging failures do not impact API availability. Crashed services are
restarted with exponential backoff; restart storms trip the failure
threshold and back off for the configured window.

Wrappers for the concrete lifecycle shapes live in the services
subpackage: start/stop pairs, blocking run functions, periodic cleanup
funcs, and the HTTP server.

Shutdown is graceful: canceling the context passed to Serve stops every
layer, and UnstoppedServiceReport names services that missed the timeout.
*/
package supervisor
