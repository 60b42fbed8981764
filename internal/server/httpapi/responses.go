package httpapi

// response is the common envelope for JSON replies. Extra fields ride in
// the embedding handlers' own types.
type response struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail,omitempty"`
}

func success() response {
	return response{Success: true}
}

func failure(detail string) response {
	return response{Success: false, Detail: detail}
}
