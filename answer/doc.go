// Package answer runs the generation step of retrieval-augmented generation.
//
// A Responder retrieves the chunks closest to a query, joins them into one
// context string and hands query and context to an ai.Generator. Format
// prints the outcome as three lines: the query, a preview of the retrieved
// context and the generated answer.
package answer
