package memories

import (
	"os"
	"path/filepath"
	"strings"
)

// Archive is the long-term tier, append-only dated markdown files that
// stay diffable and greppable by the same tooling that reads the
// sandbox tree.
type Archive struct {
	dir string
}

func NewArchive(dir string) *Archive {
	return &Archive{
		dir: dir,
	}
}

func (a *Archive) Dir() string {
	return a.dir
}

func formatTurn(msg Message) string {
	label := "Lud"
	if msg.Role == "user" {
		label = "User"
	}
	return "### " + msg.Timestamp.Format("03:04 PM") + "\n" +
		"**" + label + "**: " + msg.Content + "\n"
}

// Save appends the messages to their dated files, oldest first. It never
// rewrites existing content.
func (a *Archive) Save(messages []Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return err
	}

	// group per date, keeping the original order inside each group
	var dates []string
	byDate := make(map[string][]Message)
	for _, msg := range messages {
		date := msg.Timestamp.Format("2006-01-02")
		if _, ok := byDate[date]; !ok {
			dates = append(dates, date)
		}
		byDate[date] = append(byDate[date], msg)
	}

	for _, date := range dates {
		path := filepath.Join(a.dir, date+".md")

		var parts []string
		if _, err := os.Stat(path); err != nil {
			parts = append(parts, "## "+date+"\n")
		}
		for _, msg := range byDate[date] {
			parts = append(parts, formatTurn(msg))
		}
		parts = append(parts, "---\n")

		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		if _, err := f.WriteString(strings.Join(parts, "\n")); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	return nil
}
