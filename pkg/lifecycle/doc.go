/*
Package lifecycle implements the port lifecycle protocol of rendered steps.

Each rendered step owns a Tracker that remembers which ports it reported
on its previous pass. On every pass the step reports the ports it just
measured; the Tracker writes them to the registry and unsets, in the same
pass, every port that was reported before but is absent now. On unmount
the Tracker unsets everything it registered.

The protocol does not depend on any rendering technology: a pass is just
a Layout, the set of port positions a step measured.

A Synchronizer keeps one Tracker per step for the owner of the canvas and
can reconcile trackers against a workflow so that removed steps never
leave stale ports behind.
*/
package lifecycle
