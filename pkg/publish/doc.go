// Package publish collects server-rendered element definitions and writes
// the resulting static pages to a directory or an S3 bucket.
//
//	c, stop := publish.Collect()
//	defer stop()
//	_ = def.Define("my-element")       // in server context
//	page, _ := c.Merge(pageTemplate)   // ssr.InsertTemplates per definition
//	_ = publish.NewDirPublisher("dist").Publish(ctx, "index.html", []byte(page))
package publish
