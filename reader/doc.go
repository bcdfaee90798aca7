// Package reader opens PDF files and loads their objects and pages.
//
// Use [Open] for a file on disk or [NewReader] for any io.ReadSeeker:
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
// Objects are loaded on demand through the cross-reference data, including
// objects packed in object streams, and cached. Files whose
// cross-reference data is damaged are recovered by scanning for object
// headers; [WithLogger] reports when that happens.
//
// Pages are reached through the catalog's page tree:
//
//	n, _ := r.PageCount()
//	page, _ := r.GetPage(0)  // 0-indexed
package reader
