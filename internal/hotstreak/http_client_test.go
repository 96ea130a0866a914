package hotstreak

import "testing"

func TestParseSearchResponse(t *testing.T) {
	body := []byte(`{
		"data": {
			"search": {
				"results": [
					{
						"markets64": "eJxLS0o=",
						"participant": {"player": {"firstName": "Jalen", "fullName": "Jalen Hurts"}}
					},
					{
						"markets64": "",
						"participant": {"player": {"firstName": "Empty", "fullName": "No Markets"}}
					},
					{
						"markets64": "eJxLSk4=",
						"participant": {"player": {"firstName": "Solo", "fullName": ""}}
					}
				]
			}
		}
	}`)

	players, err := ParseSearchResponse(body)
	if err != nil {
		t.Fatalf("ParseSearchResponse: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("got %d players, want 2 (empty markets64 dropped)", len(players))
	}
	if players[0].FullName != "Jalen Hurts" || players[0].Markets64 != "eJxLS0o=" {
		t.Errorf("first player = %+v", players[0])
	}
	// Missing fullName falls back to firstName.
	if players[1].FullName != "Solo" {
		t.Errorf("second player full name = %q, want %q", players[1].FullName, "Solo")
	}
}

func TestParseSearchResponseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"data": `},
		{"graphql error", `{"errors": [{"message": "unauthorized"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSearchResponse([]byte(tt.body)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseSystemResponse(t *testing.T) {
	body := []byte(`{
		"data": {
			"system": {
				"sports": [
					{
						"id": "Z2lkOi8vaHMzL1Nwb3J0LzI",
						"name": "Football",
						"categories": [
							{"id": "Z2lkOi8vaHMzL0NhdGVnb3J5LzIwNA", "name": "Passing Yards", "groupName": "Passing"},
							{"id": "", "name": "broken", "groupName": ""}
						]
					},
					{
						"id": "Z2lkOi8vaHMzL1Nwb3J0LzM",
						"name": "Basketball",
						"categories": [
							{"id": "Z2lkOi8vaHMzL0NhdGVnb3J5LzUx", "name": "Points", "groupName": "Scoring"}
						]
					}
				]
			}
		}
	}`)

	categories, err := ParseSystemResponse(body)
	if err != nil {
		t.Fatalf("ParseSystemResponse: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("got %d categories, want 2 (blank id dropped)", len(categories))
	}
	if categories[0].Name != "Passing Yards" || categories[0].Sport != "Football" {
		t.Errorf("first category = %+v", categories[0])
	}
	if categories[1].Sport != "Basketball" || categories[1].GroupName != "Scoring" {
		t.Errorf("second category = %+v", categories[1])
	}
}
