/*
Package domain contains the core models of the cacheflow canvas.

It defines the workflow graph edited on the canvas and the values derived
from it for rendering. The package is pure: no I/O, no shared state, and
every edit returns a new Workflow value.

# Key Entities

  - Workflow: the graph, a set of Steps keyed by id plus opaque Meta.
  - Step: a node with a Component descriptor, input slots and outputs.
  - StepInput: a slot entry, either a Constant or a Connection to another
    step's output. Connections may dangle; that is a normal state.
  - PortKey: identity of a rendered port (step, direction, name).
  - ConnectionView: a connection whose both endpoints are registered,
    with resolved coordinates.
*/
package domain
