package config

import (
	"slices"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"github.com/Iron-Ham/packrat/internal/errors"
)

// Apply merges a settings payload into s. The payload must be an object;
// keys it carries override the matching fields, keys it omits keep their
// current values, and the merged result must validate before anything
// commits.
//
// While LockBaseDir is set, payloads changing base_dir or clearing the lock
// have those fields refused rather than applied; the refusals come back in
// rejected so the caller can notify. Refusal is not an error and the rest of
// the payload still applies.
//
// changed lists the top-level fields whose values differ after the merge.
// On any returned error s is left untouched.
func (s *Settings) Apply(v any) (changed, rejected []string, err error) {
	payload, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, nil, errors.NewInvalidArgumentError("settings payload must be an object").
			WithField("config").
			WithValue(v).
			WithCause(err)
	}

	next := s.clone()

	// Decoding into a populated slice keeps trailing elements from the old
	// value, so slice fields named by the payload reset first.
	if _, ok := payload["excludes"]; ok {
		next.Excludes = nil
	}
	if w, ok := payload["watch"]; ok {
		if wm, werr := cast.ToStringMapE(w); werr == nil {
			if _, ok := wm["ignore"]; ok {
				next.Watch.Ignore = nil
			}
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: next})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build settings decoder")
	}
	if err := dec.Decode(payload); err != nil {
		return nil, nil, errors.NewInvalidArgumentError("settings payload does not decode").
			WithField("config").
			WithCause(err)
	}

	if s.LockBaseDir {
		if next.BaseDir != s.BaseDir {
			next.BaseDir = s.BaseDir
			rejected = append(rejected, "base_dir")
		}
		if !next.LockBaseDir {
			next.LockBaseDir = true
			rejected = append(rejected, "lock_base_dir")
		}
	}

	if errs := next.Validate(); len(errs) > 0 {
		return nil, nil, ValidationErrors(errs)
	}

	changed = diff(s, next)
	*s = *next
	return changed, rejected, nil
}

// clone copies s deeply enough that mutating the copy leaves s alone.
func (s *Settings) clone() *Settings {
	next := *s
	next.Excludes = slices.Clone(s.Excludes)
	next.Watch.Ignore = slices.Clone(s.Watch.Ignore)
	return &next
}

// diff lists the top-level config keys whose values differ between old and next.
func diff(old, next *Settings) []string {
	var changed []string

	if old.CompressFormat != next.CompressFormat {
		changed = append(changed, "compress_format")
	}
	if old.BaseDir != next.BaseDir {
		changed = append(changed, "base_dir")
	}
	if old.LockBaseDir != next.LockBaseDir {
		changed = append(changed, "lock_base_dir")
	}
	if old.Encoding != next.Encoding {
		changed = append(changed, "encoding")
	}
	if !slices.Equal(old.Excludes, next.Excludes) {
		changed = append(changed, "excludes")
	}
	if old.Logging != next.Logging {
		changed = append(changed, "logging")
	}
	if old.Watch.DebounceMs != next.Watch.DebounceMs || !slices.Equal(old.Watch.Ignore, next.Watch.Ignore) {
		changed = append(changed, "watch")
	}

	return changed
}
