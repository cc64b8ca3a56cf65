// Package ragkit wires the pieces of a small retrieval-augmented generation
// pipeline together.
//
// A Database opens a vector store, gets or creates one collection in it, and
// holds the AI provider used to embed text and generate answers. Its factory
// methods build the ingestion pipeline, the searcher, the responder and the
// reembedder over that collection:
//
//	db, err := ragkit.NewDatabase("", ragkit.WithInMemory(true))
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	pipeline, _ := db.NewIngestionPipeline()
//	defer pipeline.Release()
//	pipeline.Ingest(ctx, core.NewDocument("notes.txt", text), nil)
//
//	responder, _ := db.NewResponder()
//	ans, _ := responder.Ask(ctx, "What is RAG?")
//	answer.Format(os.Stdout, ans)
package ragkit
