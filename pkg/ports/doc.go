/*
Package ports defines the driven ports (interfaces) of the cacheflow canvas.

These interfaces decouple the canvas from the concrete port registry and
keep each collaborator on the narrowest side of it: rendered steps only
write positions, derivation only reads them.

# Key Interfaces

  - PortReporter: write side used by the port lifecycle protocol.
  - PortLookup: read side used by connection derivation.
  - PortRegistry: the full registry owned by the canvas.
*/
package ports
