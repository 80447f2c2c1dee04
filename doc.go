// Package inkwell is the composition root for the Inkwell blog engine.
//
// Inkwell treats a directory of Markdown and MDX posts as a database: each
// file carries YAML frontmatter (title, date, tags, draft, layout, ...),
// the core layer validates that schema, and the filesystem adapter
// persists, indexes, and version-controls the files with Git. On top of
// the vault sits a static site builder that renders published posts
// through named layouts.
//
// Architecture:
//
//   - pkg/core: domain model (Post, FrontMatter, Service). Isolated from
//     persistence details.
//   - pkg/adapters/fs: filesystem adapter with an mtime index cache, git
//     versioning, transactions, and a change watcher.
//   - pkg/render: markdown pipeline, layout registry, and the hero banner.
//   - pkg/site: site manifest, build pipeline, and preview server.
//
// Usage:
//
//	svc, err := inkwell.New("./vault",
//		inkwell.WithAutoInit(true),
//		inkwell.WithLogger(logger),
//	)
//
//	post := core.Post{
//		ID:   "hello-world",
//		Body: "My first post.",
//		Matter: core.FrontMatter{
//			Title:  "Hello World",
//			Date:   date,
//			Layout: "PostLayout",
//		},
//	}
//	err = svc.SavePost(ctx, post)
package inkwell
