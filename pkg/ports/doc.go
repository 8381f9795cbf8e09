/*
Package ports defines the driven ports (interfaces) of the funnel runtime.

These interfaces decouple the playback core from the remote service, storage
backends and transports.

# Key Interfaces

  - FunnelSource: loads a funnel definition by UUID (remote API, catalog, memory).
  - Reporter: the fire-and-forget analytics and lead boundary.
  - FunnelStore, LeadStore, EventStore: persistence behind the reference service.
  - StateStore: persistence for hosted playback sessions.
  - DistributedLocker: cross-replica locking for hosted sessions.
*/
package ports
