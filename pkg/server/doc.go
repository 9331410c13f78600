// Package server provides the HTTP server for the bookshelf API.
//
// The server uses gorilla/mux for routing, gorilla/handlers for access
// logging and panic recovery, and holds everything the endpoints need:
// stores, the access policy, the validator and the token signer.
//
// # Server Setup
//
//	srv, err := server.NewServer(server.GormStores(db), cfg, signer, "0.0.0.0", "8000",
//	    server.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoints.RegisterAll(srv)
//	log.Fatal(srv.Start())
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//   - /books/ and /books/{id}/ - book catalog with filtering
//   - /authors/ and /libraries/ - catalog relations
//   - /register, /login, /whoami - accounts and tokens
//   - /admin-panel, /librarian-panel, /member-panel - role panels
//   - / and /health - status
package server
