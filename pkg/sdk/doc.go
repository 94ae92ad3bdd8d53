// Package chromex is a Go client for Chroma servers of mixed API generations.
//
// Every call takes an explicit Connection; the client keeps no current target.
// Listing, searching and collection deletion try a fixed, ordered set of endpoint
// shapes and accept the first that answers, so one client works against v1 and v2
// servers alike.
//
//	client, _ := chromex.New(chromex.WithRelay("http://localhost:3000"))
//	conn := chromex.Connection{Host: "10.0.0.5", Port: "8000"}
//
//	if !client.Connected(ctx, conn) {
//	    return
//	}
//	cols, _ := client.Collections(conn).List(ctx)
//	hits, _ := client.Documents(conn, cols[0].ID).Search(ctx, "invoice", 10)
//
// Failures surface as *OperationError with a short message; errors.Is matches
// ErrTransport, ErrIncompatible, ErrValidation or ErrMalformedResponse.
package chromex
