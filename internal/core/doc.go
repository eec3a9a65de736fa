// Package core provides the upload session logic behind the dashboard's
// image upload page, independent of HTTP and templates.
//
// # Sessions
//
// An [Orchestrator] owns one upload session and its state machine:
//
//	idle -> ready -> pending -> succeeded | failed
//
// It is the single owner of the selected file. A [Page] pairs an Orchestrator
// with an intake.Dropzone: the dropzone reports selections through
// [Orchestrator.SelectFile], and the orchestrator pushes every handle change
// back with Dropzone.SetValue, which releases the replaced preview.
//
//	page := core.NewPage(id, previews, intake.ImagePolicy(maxSize), processor)
//	page.Drop(files)
//	done, err := page.SubmitAsync(ctx)
//
// Only one submission may be in flight per session; a second one returns
// [ErrBusy] without side effects. Processing runs to completion even when
// the request that started it goes away.
//
// # Processing
//
// The [Processor] interface is the processing backend. [MockProcessor]
// waits a fixed delay and returns a fixed locator; [LimitedProcessor] bounds
// concurrent calls across sessions with an [UploadLimiter].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a support code:
//
//   - FILE001-FILE005: file errors (size, type, count, form)
//   - UPL001-UPL005: session errors (busy, saturated, expired, cancelled, timeout)
//   - PRV001, THM001, RATE001: preview, theme and rate limit errors
package core
