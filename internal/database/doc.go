// # Usage
//
//	provider := database.NewProvider(database.Config{
//	    URL:       "ws://localhost:8000",
//	    Namespace: "cigno",
//	    Database:  "platform",
//	    User:      "root",
//	    Password:  "root",
//	})
//	defer provider.Close()
//
//	users := repository.NewUserRepository(provider)
//
// Records are addressed with type::thing($tb, $id) where $id is the
// 24-character hex object identifier exposed by the API.
package database
