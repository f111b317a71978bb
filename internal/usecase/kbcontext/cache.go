package kbcontext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/agencyos/meeting-scribe/errors"
	"github.com/agencyos/meeting-scribe/internal/domain/entities"
)

// Document-tree locations scanned on refresh
const (
	contactsDir = "05-hr-department/network-contacts/by-category"
	projectsDir = "02-operations/project-management/active-projects"

	coachCategory = "coaches"
)

// contactCategories are the four fixed contact category directories
var contactCategories = []string{"clients", "developers", "coaches", "potential-leads"}

// partnerRoster is the fixed set of equity partners
var partnerRoster = []entities.Partner{
	{Name: "Matthew", Email: "matthew@example.com", Role: "Architect — dev systems, company OS, prototyping and validation"},
	{Name: "Mekaiel", Email: "mekaiel@example.com", Role: "Systems, onboarding, sales, content systems"},
	{Name: "Chris", Email: "chris@example.com", Role: "Systems, onboarding, sales, lead list management"},
	{Name: "Trent", Email: "trent@example.com", Role: "Architect — dev systems, robotics, developer hiring"},
}

// Cache loads and caches reference data from the document tree. Refreshes are
// single-flighted: the cache mutex is held for the duration of one tree read,
// so concurrent callers wait and then reuse the fresh snapshot.
type Cache struct {
	root   string
	ttl    time.Duration
	logger *zap.Logger

	mu       sync.Mutex
	snapshot *entities.ContextSnapshot
}

// NewCache creates a context cache over the knowledge-base root
func NewCache(root string, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{root: root, ttl: ttl, logger: logger}
}

// Load returns the cached snapshot when it is younger than the TTL and force
// is false. On a failed refresh an existing stale snapshot is preferred over
// failure; only the very first load can fail outright.
func (c *Cache) Load(ctx context.Context, force bool) (*entities.ContextSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && !force && c.snapshot.Age() < c.ttl {
		return c.snapshot, nil
	}

	snapshot, err := c.scan(ctx)
	if err != nil {
		if c.snapshot != nil {
			if c.logger != nil {
				c.logger.Warn("context refresh failed, serving stale snapshot",
					zap.Duration("age", c.snapshot.Age()),
					zap.Error(err),
				)
			}
			return c.snapshot, nil
		}
		return nil, apperrors.ErrContextLoadFailed(err)
	}

	c.snapshot = snapshot
	return c.snapshot, nil
}

// scan performs one full tree read
func (c *Cache) scan(ctx context.Context) (*entities.ContextSnapshot, error) {
	if _, err := os.Stat(c.root); err != nil {
		return nil, fmt.Errorf("knowledge base unreadable: %w", err)
	}

	snapshot := &entities.ContextSnapshot{
		Partners:  partnerRoster,
		Timestamp: time.Now(),
	}

	for _, category := range contactCategories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		contacts := c.scanContacts(category)
		if category == coachCategory {
			snapshot.Coaches = append(snapshot.Coaches, contacts...)
		}
		snapshot.Contacts = append(snapshot.Contacts, contacts...)
	}

	snapshot.Projects = c.scanProjects()
	return snapshot, nil
}

// scanContacts reads one category directory; unreadable files are skipped
func (c *Cache) scanContacts(category string) []entities.Contact {
	dir := filepath.Join(c.root, contactsDir, category)
	files, err := os.ReadDir(dir)
	if err != nil {
		// A missing category directory just means no contacts of that type
		return nil
	}

	var contacts []entities.Contact
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") {
			continue
		}
		contact, err := parseContactFile(filepath.Join(dir, f.Name()), category)
		if err != nil {
			if c.logger != nil {
				c.logger.Debug("skipping unparsable contact file",
					zap.String("file", f.Name()),
					zap.Error(err),
				)
			}
			continue
		}
		contacts = append(contacts, contact)
	}
	return contacts
}

// scanProjects reads the active-projects directory
func (c *Cache) scanProjects() []entities.Project {
	dir := filepath.Join(c.root, projectsDir)
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var projects []entities.Project
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") {
			continue
		}
		project := entities.Project{
			Name:     nameFromFilename(f.Name()),
			FilePath: filepath.Join(projectsDir, f.Name()),
		}
		if data, err := os.ReadFile(filepath.Join(dir, f.Name())); err == nil {
			project.Summary = firstParagraph(string(data))
		}
		projects = append(projects, project)
	}
	return projects
}

// parseContactFile extracts labeled fields from a loosely formatted markdown
// contact file. Looks for "Email:", "Company:" and "Role:" lines, with or
// without bold emphasis.
func parseContactFile(path, category string) (entities.Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.Contact{}, err
	}

	contact := entities.Contact{
		Name:     nameFromFilename(filepath.Base(path)),
		Category: category,
		FilePath: filepath.Join(contactsDir, category, filepath.Base(path)),
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			contact.Name = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			continue
		}
		if v, ok := labeledValue(line, "email"); ok {
			contact.Email = v
		}
		if v, ok := labeledValue(line, "company"); ok {
			contact.Company = v
		}
		if v, ok := labeledValue(line, "role"); ok {
			contact.Role = v
		}
	}
	return contact, nil
}

// labeledValue matches lines like "Email: x", "**Email:** x" or "- email: x"
func labeledValue(line, label string) (string, bool) {
	normalized := strings.ToLower(strings.TrimLeft(line, "-* \t"))
	if !strings.HasPrefix(normalized, label+":") {
		return "", false
	}
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", false
	}
	value := strings.TrimSpace(strings.Trim(line[idx+1:], "* "))
	if value == "" {
		return "", false
	}
	return value, true
}

// nameFromFilename turns "jane-doe.md" into "Jane Doe"
func nameFromFilename(filename string) string {
	base := strings.TrimSuffix(filename, ".md")
	words := strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// firstParagraph returns the first non-heading paragraph of a document
func firstParagraph(content string) string {
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || strings.HasPrefix(para, "#") {
			continue
		}
		return para
	}
	return ""
}
