// Package services holds cross-cutting helpers shared by every marquee
// component: context annotation (run id, component, candidate) and the fixed
// error taxonomy that the caller-facing result contract exposes as
// machine-readable codes.
package services
