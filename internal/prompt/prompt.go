package prompt

import (
	"fmt"
	"math/rand"
	"strings"
)

// Variant selects which generation target a prompt is composed for.
type Variant int

const (
	// Still composes a prompt for a static image.
	Still Variant = iota
	// Motion composes a prompt for video generation, appending the
	// motion-quality clauses.
	Motion
)

const (
	animeStyleClause = ", sleek classic anime style, high quality anime art, detailed anime illustration"
	motionClause     = ", subtle movement, gentle animation, smooth motion, cinematic quality"
)

// Build composes the generation prompt for a profile and the user's chosen
// attributes. The function is pure: identical inputs produce byte-identical
// output. Personality and style names without a modifier in the profile
// degrade to empty clauses.
func Build(profile *Profile, personality, style, hairColor, biography string, variant Variant) string {
	var b strings.Builder

	b.WriteString(profile.BasePrompt)
	b.WriteString(" ")
	b.WriteString(profile.PersonalityClause(personality))
	b.WriteString(", ")
	b.WriteString(profile.StyleClause(style))
	b.WriteString(", ")
	fmt.Fprintf(&b, "with beautiful %s hair", strings.ToLower(hairColor))

	// Trimming applies to the emptiness test only; the biography itself is
	// appended verbatim.
	if strings.TrimSpace(biography) != "" {
		b.WriteString(", ")
		b.WriteString(biography)
	}

	b.WriteString(". ")
	b.WriteString(strings.Join(profile.ConsistencyTags, ", "))
	b.WriteString(animeStyleClause)

	if variant == Motion {
		b.WriteString(motionClause)
	}

	return b.String()
}

// Prompts bundles the composed prompt pair with the profile that produced it,
// for persistence alongside the character.
type Prompts struct {
	Image   string
	Video   string
	Profile *Profile
}

// BuildPair picks a random archetype and composes both the still-image and
// the motion prompt from it.
func BuildPair(rng *rand.Rand, personality, style, hairColor, biography string) Prompts {
	profile := PickProfile(rng)
	return Prompts{
		Image:   Build(profile, personality, style, hairColor, biography, Still),
		Video:   Build(profile, personality, style, hairColor, biography, Motion),
		Profile: profile,
	}
}
