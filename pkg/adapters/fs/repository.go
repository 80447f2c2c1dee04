package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tmorell/inkwell/pkg/core"
	"github.com/tmorell/inkwell/pkg/git"
)

// DefaultSystemDir is the hidden directory holding the metadata index.
const DefaultSystemDir = ".inkwell"

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	AutoInit     bool
	Gitless      bool
	MustExist    bool
	Strict       bool
	ReadOnly     bool
	Logger       *slog.Logger
	SystemDir    string // e.g. ".inkwell"
	ErrorHandler func(error)
}

// Repository implements core.Repository using the filesystem and Git.
// Content lives as Markdown/MDX files with YAML frontmatter; a JSON index
// under the system directory accelerates listings.
type Repository struct {
	Path        string
	git         *git.Client
	cache       *cache
	config      Config
	serializers map[string]Serializer

	mu            sync.RWMutex
	watcherActive bool
	lastReconcile *time.Time
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	return &Repository{
		Path:        config.Path,
		git:         git.NewClient(config.Path, config.SystemDir+".lock", config.Logger),
		config:      config,
		cache:       newCache(config.Path, config.SystemDir),
		serializers: DefaultSerializers(config.Strict),
	}
}

// RegisterSerializer installs a custom serializer for the given extension.
func (r *Repository) RegisterSerializer(ext string, s Serializer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serializers[ext] = s
}

func (r *Repository) serializerFor(ext string) (Serializer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.serializers[ext]
	return s, ok
}

// Begin starts a new transaction.
func (r *Repository) Begin(ctx context.Context) (core.Transaction, error) {
	if r.config.ReadOnly {
		return nil, core.ErrReadOnly
	}
	return NewTransaction(r), nil
}

// Initialize performs the necessary setup for the repository (mkdir, git init).
// In read-only mode nothing is created; the vault must already exist.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", r.Path)
		}
	} else {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	if r.config.ReadOnly {
		return nil
	}

	if !r.config.Gitless {
		if !git.IsInstalled() {
			return fmt.Errorf("git is not installed")
		}

		wasNewRepo := false
		if !r.git.IsRepo() {
			if r.config.AutoInit {
				if err := r.git.Init(); err != nil {
					return fmt.Errorf("failed to git init: %w", err)
				}
				wasNewRepo = true
			} else {
				return fmt.Errorf("path is not a git repository: %s", r.Path)
			}
		}

		// Ensure .gitignore has the system directory
		mod, err := r.ensureIgnore()
		if err != nil {
			return fmt.Errorf("failed to ensure .gitignore: %w", err)
		}

		if mod && wasNewRepo {
			// If we just created the repo, commit the .gitignore to start clean
			if err := r.git.Add(".gitignore"); err != nil {
				return fmt.Errorf("failed to add .gitignore: %w", err)
			}
			if err := r.git.Commit(fmt.Sprintf("chore: configure %s ignore", r.config.SystemDir)); err != nil {
				return fmt.Errorf("failed to commit .gitignore: %w", err)
			}
		}
	}

	return nil
}

func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	ignoreEntry := r.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	lines := strings.Split(string(content), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == ignoreEntry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}

	if _, err := f.WriteString(ignoreEntry + "\n"); err != nil {
		return false, err
	}

	return true, nil
}

// Sync synchronizes the repository with its remote.
func (r *Repository) Sync(ctx context.Context) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if r.config.Gitless {
		return fmt.Errorf("cannot sync in gitless mode")
	}

	if !r.git.IsRepo() {
		return fmt.Errorf("path is not a git repository: %s", r.Path)
	}

	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	return r.git.Sync()
}

// Save persists a document to the filesystem and commits it to Git.
//
// Workflow:
//  1. Resolve the filename (default extension .md when the ID carries none).
//  2. Create parent directories.
//  3. Serialize frontmatter + body and write atomically to disk.
//  4. (If Git enabled) 'git add' and 'git commit' with context metadata.
func (r *Repository) Save(ctx context.Context, doc core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if doc.ID == "" {
		return fmt.Errorf("document has no ID")
	}

	filename, ext := r.filenameFor(doc.ID)
	s, ok := r.serializerFor(ext)
	if !ok {
		return fmt.Errorf("no serializer registered for %s", ext)
	}

	fullPath := filepath.Join(r.Path, filename)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := s.Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	if err := writeFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	// Refresh the index entry so a later Reconcile does not mistake our own
	// write for an external change.
	if info, statErr := os.Stat(fullPath); statErr == nil {
		r.cache.Set(filepath.ToSlash(filename), &indexEntry{
			ID:           doc.ID,
			Metadata:     doc.Metadata,
			LastModified: info.ModTime(),
		})
	}

	if !r.config.Gitless {
		unlock, err := r.git.Lock()
		if err != nil {
			return fmt.Errorf("failed to acquire git lock: %w", err)
		}
		defer unlock()

		if err := r.git.Add(filename); err != nil {
			return fmt.Errorf("failed to git add: %w", err)
		}

		msg := "update " + doc.ID
		if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
			msg = val
		}

		if err := r.git.Commit(msg); err != nil {
			return fmt.Errorf("failed to git commit: %w", err)
		}
	}

	return nil
}

// Get retrieves a document from the filesystem.
//
// IDs usually omit the extension; .md is tried first, then .mdx. An ID that
// already names a supported extension is used as-is.
func (r *Repository) Get(ctx context.Context, id string) (core.Document, error) {
	fullPath, ext, err := r.locate(id)
	if err != nil {
		return core.Document{}, err
	}

	s, ok := r.serializerFor(ext)
	if !ok {
		return core.Document{}, fmt.Errorf("no serializer registered for %s", ext)
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
		}
		return core.Document{}, err
	}
	defer f.Close()

	doc, err := s.Parse(f)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse document %s: %w", id, err)
	}
	doc.ID = id

	return *doc, nil
}

// List scans the directory for all documents.
//
// Strategy:
//  1. Load existing cache (metadata index) from disk.
//  2. Walk the directory tree (skipping .git and the system dir).
//  3. For each supported file:
//     a. Cache hit (based on mtime): use cached metadata, skip the body parse.
//     b. Cache miss: full parse, update cache.
//  4. Persist the cache (unless read-only).
func (r *Repository) List(ctx context.Context) ([]core.Document, error) {
	var docs []core.Document

	if err := r.cache.Load(); err != nil && r.config.Logger != nil {
		r.config.Logger.Debug("index cache load failed, starting empty", "error", err)
	}
	seen := make(map[string]bool)

	err := filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == r.config.SystemDir {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), TempFilePrefix) {
			return nil
		}

		ext := filepath.Ext(d.Name())
		if _, ok := r.serializerFor(ext); !ok {
			return nil
		}

		relPath, err := filepath.Rel(r.Path, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		id := idFor(relPath, ext)

		info, err := d.Info()
		if err != nil {
			return nil
		}
		mtime := info.ModTime()

		seen[relPath] = true

		if entry, hit := r.cache.Get(relPath, mtime); hit {
			docs = append(docs, core.Document{
				ID:       entry.ID,
				Metadata: entry.Metadata,
			})
			return nil
		}

		doc, err := r.Get(ctx, id)
		if err != nil {
			// An unparseable file is an authoring error; surface it instead of
			// silently producing an incomplete listing.
			return fmt.Errorf("list: %w", err)
		}

		r.cache.Set(relPath, &indexEntry{
			ID:           id,
			Metadata:     doc.Metadata,
			LastModified: mtime,
		})

		docs = append(docs, doc)
		return nil
	})

	if err != nil {
		return nil, err
	}

	r.cache.Prune(seen)
	if !r.config.ReadOnly {
		if err := r.cache.Save(); err != nil && r.config.Logger != nil {
			r.config.Logger.Debug("index cache save failed", "error", err)
		}
	}

	return docs, nil
}

// Delete removes a document.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	fullPath, _, err := r.locate(id)
	if err != nil {
		return err
	}

	relPath, err := filepath.Rel(r.Path, fullPath)
	if err == nil {
		r.cache.Delete(filepath.ToSlash(relPath))
	}

	if r.config.Gitless {
		if err := os.Remove(fullPath); err != nil {
			return fmt.Errorf("failed to remove file: %w", err)
		}
		return nil
	}

	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := r.git.Rm(filepath.ToSlash(relPath)); err != nil {
		return fmt.Errorf("failed to git rm: %w", err)
	}

	if err := r.git.Commit("delete " + id); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}

	return nil
}

// IsGitInstalled checks if git is available in the system path.
func IsGitInstalled() bool {
	return git.IsInstalled()
}

// --- Path resolution helpers ---

// filenameFor maps an ID to the file it should be written to.
// IDs without a recognized extension default to .md.
func (r *Repository) filenameFor(id string) (filename, ext string) {
	ext = filepath.Ext(id)
	if _, ok := r.serializerFor(ext); ok {
		return id, ext
	}
	return id + ".md", ".md"
}

// locate finds the existing file backing an ID.
func (r *Repository) locate(id string) (fullPath, ext string, err error) {
	candidateExt := filepath.Ext(id)
	if _, ok := r.serializerFor(candidateExt); ok {
		return filepath.Join(r.Path, id), candidateExt, nil
	}

	for _, e := range []string{".md", ".mdx"} {
		p := filepath.Join(r.Path, id+e)
		if info, statErr := os.Stat(p); statErr == nil && !info.IsDir() {
			return p, e, nil
		}
	}

	// Default to .md so Get reports a consistent not-found error.
	return filepath.Join(r.Path, id+".md"), ".md", nil
}

// idFor derives the document ID from a vault-relative path.
// Markdown and MDX files drop their extension; other formats keep it.
func idFor(relPath, ext string) string {
	if ext == ".md" || ext == ".mdx" {
		return strings.TrimSuffix(relPath, ext)
	}
	return relPath
}
