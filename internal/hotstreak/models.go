package hotstreak

// graphqlRequest is the POST body for the graphql endpoint.
type graphqlRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// searchResponse is the shape of the search query result. Only the fields
// the pipeline consumes are declared; the endpoint returns much more.
type searchResponse struct {
	Data struct {
		Search struct {
			Results []searchResult `json:"results"`
		} `json:"search"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type searchResult struct {
	Markets64   string `json:"markets64"`
	Participant struct {
		Player struct {
			FirstName string `json:"firstName"`
			FullName  string `json:"fullName"`
		} `json:"player"`
	} `json:"participant"`
}

// systemResponse is the shape of the system query result: all sports with
// their category catalogs.
type systemResponse struct {
	Data struct {
		System struct {
			Sports []systemSport `json:"sports"`
		} `json:"system"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type systemSport struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Categories []systemCategory `json:"categories"`
}

type systemCategory struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GroupName string `json:"groupName"`
}

type graphqlError struct {
	Message string `json:"message"`
}
