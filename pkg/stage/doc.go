/*
Package stage is the unit a host drives: one initialization, then one Map
call per record.

	+---------------+   Init(params) ok   +---------+
	| Uninitialized | ------------------> |  Ready  | --+ Map(record)
	+---------------+                     +---------+ <-+
	   |   ^                                   |
	   +---+ Init fails (stays)                +-- Init again: ErrAlreadyInitialized

🎯 Purpose:
- Parses and compiles the operation document exactly once
- Installs the compiled pipeline in an explicit, shareable handle
- Maps each record: UTF-8 check, pipeline fold, JSON integrity, same key out

⚡ Errors:
- configuration: config.ErrMissingConfiguration, config.ErrInvalidConfiguration,
  operation.ErrInvalidPattern, operation.ErrInvalidTemplate
- sequencing: ErrUninitializedPipeline, ErrAlreadyInitialized
- per record: ErrNonTextPayload, integrity.ErrMalformedResultPayload

IsConfigurationError, IsSequencingError and IsRecordError classify them.

🤝 Concurrency:
Init must happen before any Map. After that, Map may be called from any
number of goroutines; the installed pipeline is never mutated.
*/
package stage
