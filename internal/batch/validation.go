package batch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength     = 100
	maxSlugLength     = 50
	maxScenesPerSet   = 64
	maxDescriptionLen = 500
	slugPattern       = `^[a-z0-9]+(?:-[a-z0-9]+)*$`
)

var slugRegex = regexp.MustCompile(slugPattern)

// ValidateDefinition performs comprehensive validation on a batch
// definition. Returns an error describing the first failure found.
func ValidateDefinition(d *Definition) error {
	if d == nil {
		return ErrInvalid
	}

	if err := ValidateName(d.Name); err != nil {
		return err
	}

	// Empty slug will be generated
	if d.Slug != "" {
		if err := ValidateSlug(d.Slug); err != nil {
			return err
		}
	}

	if d.Description != nil && len(*d.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalid, maxDescriptionLen)
	}

	if len(d.Unload) > maxScenesPerSet {
		return fmt.Errorf("%w: unload set exceeds %d scenes", ErrInvalid, maxScenesPerSet)
	}
	if len(d.Load) > maxScenesPerSet {
		return fmt.Errorf("%w: load set exceeds %d scenes", ErrInvalid, maxScenesPerSet)
	}

	// Duplicate names inside the unload set would be rejected by the
	// coordinator at run time; catch them at authoring time instead.
	if dup, ok := firstDuplicate(d.Unload); ok {
		return fmt.Errorf("%w: duplicate scene %q in unload set", ErrInvalid, dup)
	}
	if dup, ok := firstDuplicate(d.Load); ok {
		return fmt.Errorf("%w: duplicate scene %q in load set", ErrInvalid, dup)
	}

	// The two halves run concurrently; a shared name would race.
	loadSet := make(map[string]struct{}, len(d.Load))
	for _, name := range d.Load {
		loadSet[name] = struct{}{}
	}
	for _, name := range d.Unload {
		if _, overlap := loadSet[name]; overlap {
			return fmt.Errorf("%w: %q", ErrOverlappingSets, name)
		}
	}

	// The activation target must come out of this batch's load set (or be
	// empty). Activating a scene the batch does not load belongs in a
	// direct SetActive call, not a batch.
	if d.Activate != "" {
		if _, ok := loadSet[d.Activate]; !ok {
			return fmt.Errorf("%w: activate target %q not in load set", ErrInvalid, d.Activate)
		}
	}

	return nil
}

// ValidateName checks a batch display name.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if len(trimmed) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateSlug checks a slug against the lowercase-hyphenated format.
func ValidateSlug(slug string) error {
	if len(slug) > maxSlugLength {
		return fmt.Errorf("%w: slug exceeds %d characters", ErrInvalidSlug, maxSlugLength)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}

// GenerateSlug derives a slug from a display name.
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	return slug
}

// GenerateID returns a new unique batch identifier.
func GenerateID() string {
	return uuid.New().String()
}

// firstDuplicate returns the first name that appears more than once.
func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return name, true
		}
		seen[name] = struct{}{}
	}
	return "", false
}
