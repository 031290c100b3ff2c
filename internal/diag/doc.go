// Package diag defines the diagnostic data model shared by the checker
// side and the display side of the overlay.
//
// # Purpose
//
//   - Report is what the checker produces: a severity, a message, and an
//     anchor pinning the finding to a (version, span) pair of the
//     document state that was checked.
//   - DisplayDiagnostic is what consumers render: a display severity and
//     a span already expressed at the document's current version.
//   - Translate maps checker severities to display severities. The
//     mapping is total; severities without a display category translate
//     to DispDropped and simply produce nothing.
//
// # Scope
//
// Package diag performs no IO, no remapping and no synchronization.
// Remapping anchors into current coordinates is the overlay's job
// (internal/overlay); rendering lives in the host and CLI layers.
//
// Reports are immutable once produced. The overlay copies the fields it
// needs and never hands a Report back out.
package diag
