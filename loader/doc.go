// Package loader reads source files into core.Document values ready for
// ingestion. Plain text and Markdown are read as-is; PDF files have their
// text layer extracted page by page.
package loader
