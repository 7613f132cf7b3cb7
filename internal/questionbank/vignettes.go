package questionbank

import (
	"embed"
	"fmt"
	"strings"

	"rscasurvey/internal/model"
)

//go:embed vignettes/*.txt
var vignetteFS embed.FS

// Vignette is a reading passage shown before questioning begins
type Vignette struct {
	ID       int                `json:"id"`
	Type     model.VignetteType `json:"type"`
	Title    string             `json:"title"`
	Author   string             `json:"author"`
	Contents string             `json:"contents"`
}

const mathTitle = "The Origins of Mathematical Abilities: Is the Nature-Nurture Controversy Resolved?"

var vignetteMeta = []Vignette{
	{ID: 1, Type: model.VignetteFixed, Title: mathTitle, Author: "Dr. E. A. Goodey"},
	{ID: 2, Type: model.VignetteGrowth, Title: mathTitle, Author: "Dr. E. A. Goodey"},
	{ID: 3, Type: model.VignetteControl, Title: "Is the Natural Gas-Fossil Fuels Controversy Resolved?", Author: "Dr. E. A. Goodey"},
}

// VignetteFor loads the passage for a vignette type
func VignetteFor(t model.VignetteType) (*Vignette, error) {
	for _, meta := range vignetteMeta {
		if meta.Type != t {
			continue
		}
		body, err := vignetteFS.ReadFile("vignettes/" + string(t) + ".txt")
		if err != nil {
			return nil, fmt.Errorf("failed to read vignette %s: %w", t, err)
		}
		v := meta
		v.Contents = strings.TrimSpace(string(body))
		return &v, nil
	}
	return nil, fmt.Errorf("unknown vignette type %q", t)
}
