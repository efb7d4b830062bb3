// Package helpers provides test utility functions for the Cigno Platform API.
//
// # JWT Helpers
//
//	jwtHelper := helpers.NewJWTHelper(t)
//	handler := middleware.Auth(jwtHelper.Service)(next)
//	token := jwtHelper.GenerateToken(t, user)
//
// # Requests
//
//	rr := helpers.NewRequest(t, http.MethodPut, "/api/projects").
//	    WithRawBody(`{"id": true}`).
//	    WithAuth(jwtHelper, user).
//	    Do(mux)
//
// # Assertions
//
//	helpers.AssertFieldError(t, rr, "id")
//	helpers.AssertRecordExists(t, db, "project", project.ID)
package helpers
