/*
Package session keeps the canvases open in one process.

Each canvas is addressed by an id chosen by the caller (a document name, a
browser tab). The Manager creates canvases on first use, applies shared
options such as logging and observability hooks to all of them, and ends
their subscriptions when they are closed.
*/
package session
