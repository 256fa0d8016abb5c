// Package config loads the ring driver configuration.
//
// Files may be JSON or YAML, chosen by extension. Values are decoded over
// Default(), so a file only needs the keys it changes:
//
//	ring:
//	  name: telemetry
//	  capacity: 4096
//	  element_size: 32
//	producer:
//	  items: 500000
//	  retry:
//	    initial_delay: 20us
//	    max_delay: 2ms
//
// Loading happens in this order: compare the document against the embedded
// JSON schema (Schema), decode it, apply RINGDEMO_* environment overrides,
// then run Validate for rules the schema cannot express, such as a power-of-two
// capacity. All failures are classified invalid and wrap
// errors.ErrInvalidConfig, errors.ErrParsingFailed or errors.ErrConfigNotFound.
package config
