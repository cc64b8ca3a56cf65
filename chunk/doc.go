// Package chunk splits document text into pieces small enough to embed.
//
// The default strategy cuts text into fixed windows of DefaultSize runes,
// trims each window and drops the ones left empty. Two separator-aware
// strategies backed by langchaingo's text splitters are also available:
// recursive keeps sentences and paragraphs of prose together, and markdown
// follows the heading structure of Markdown files.
package chunk
