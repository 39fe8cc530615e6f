package parsefields

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/career-profile/constants"
)

func TestExtract_CVLimits(t *testing.T) {
	companies := []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli", "Stark", "Wayne"}
	universities := []string{"Lagos", "Ibadan", "Nairobi", "Ghana", "Cape Town"}

	var b strings.Builder
	b.WriteString("Jane Doe\njane@example.com\n\nExperience\n")
	for i, c := range companies {
		fmt.Fprintf(&b, "Engineer at %s\n%d - %d\n", c, 2010+i, 2011+i)
	}
	b.WriteString("\nEducation\n")
	for i, u := range universities {
		fmt.Fprintf(&b, "BSc Physics, University of %s, %d - %d\n", u, 1990+i, 1994+i)
	}
	b.WriteString("\nAchievements\n")
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&b, "- Increased revenue by %d%%\n", i)
	}

	cv := extract(t, b.String(), constants.MasterCV).CV
	require.NotNil(t, cv)

	tests := []struct {
		name  string
		input int
		got   int
		limit int
	}{
		{"experience", len(companies), len(cv.WorkExperience), maxExperience},
		{"education", len(universities), len(cv.Education), maxEducation},
		{"achievements", 12, len(cv.Achievements), maxAchievements},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Greater(t, tt.input, tt.limit)
			assert.Equal(t, tt.limit, tt.got)
		})
	}

	// entries are kept in document order
	assert.Equal(t, "Acme", cv.WorkExperience[0].Company)
	assert.Equal(t, "Hooli", cv.WorkExperience[maxExperience-1].Company)
	assert.Equal(t, "University of Nairobi", cv.Education[maxEducation-1].Institution)
}
