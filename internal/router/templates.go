package router

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/gin-contrib/multitemplate"

	"socialfeed/internal/models"
	"socialfeed/internal/utils"
)

// views maps each render name to its file under views/.
var views = []string{
	"auth/login.html",
	"auth/register.html",
	"feed/index.html",
	"user/profile.html",
	"news/index.html",
	"error.html",
}

var reactionEmoji = map[models.ReactionKind]string{
	models.ReactionLike:  "👍",
	models.ReactionLove:  "❤️",
	models.ReactionLaugh: "😂",
	models.ReactionWow:   "😮",
	models.ReactionAngry: "😠",
	models.ReactionSad:   "😢",
}

// LoadTemplates uses multitemplate so every view gets its own copy of the
// layouts and includes.
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}
	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	for _, view := range views {
		r.AddFromFilesFuncs(view, funcMap, assemble(templatesDir+"/views/"+view)...)
	}
	return r
}

var funcMap = template.FuncMap{
	"dict": func(values ...interface{}) (map[string]interface{}, error) {
		if len(values)%2 != 0 {
			return nil, fmt.Errorf("invalid dict call")
		}
		dict := make(map[string]interface{}, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict keys must be strings")
			}
			dict[key] = values[i+1]
		}
		return dict, nil
	},
	"timeAgo": func(t models.Timestamp) string {
		return timeAgo(t.Time, time.Now())
	},
	"renderContent": utils.RenderContent,
	"reactionKinds": func() []models.ReactionKind {
		return models.ReactionKinds
	},
	"reactionEmoji": func(kind models.ReactionKind) string {
		return reactionEmoji[kind]
	},
	"reactionCount": func(p models.Post, kind models.ReactionKind) int {
		return len(p.Reactions[kind])
	},
	// likedBy tolerates an anonymous viewer.
	"likedBy": func(p models.Post, user *models.User) bool {
		return user != nil && p.LikedBy(user.ID)
	},
	// reactionOf is the viewer's current reaction, or "".
	"reactionOf": func(p models.Post, user *models.User) models.ReactionKind {
		if user == nil {
			return ""
		}
		kind, _ := p.Reactions.Of(user.ID)
		return kind
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

func timeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	seconds := int(now.Sub(t).Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
