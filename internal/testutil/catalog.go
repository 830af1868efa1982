package testutil

import "github.com/quiverdb/quiver/internal/catalog"

// SocialCatalog returns the shared test schema: a small social graph over
// person and company tables with three relationship tables.
//
// Labels and their physical mappings:
//
//	Person  -> persons(person_id; name, age, active)
//	Company -> companies(company_id; name, founded)
//	KNOWS      -> knows(src_person, dst_person; since)
//	WORKS_AT   -> employment(employee_id, employer_id; role, since)
//	FOLLOWS    -> follows(follower_id, followee_id; since)
//
// FOLLOWS is declared ambiguous to exercise either-direction defaults.
func SocialCatalog() *catalog.StaticCatalog {
	nodes := []catalog.NodeEntry{
		{
			Label:    "Person",
			Table:    "persons",
			IDColumn: "person_id",
			Properties: map[string]string{
				"name":   "full_name",
				"age":    "age_years",
				"active": "is_active",
			},
		},
		{
			Label:    "Company",
			Table:    "companies",
			IDColumn: "company_id",
			Properties: map[string]string{
				"name":    "legal_name",
				"founded": "founded_year",
			},
		},
	}

	rels := []catalog.RelEntry{
		{
			TypeLabel:  "KNOWS",
			Table:      "knows",
			FromColumn: "src_person",
			ToColumn:   "dst_person",
			Properties: map[string]string{"since": "since_year"},
		},
		{
			TypeLabel:  "WORKS_AT",
			Table:      "employment",
			FromColumn: "employee_id",
			ToColumn:   "employer_id",
			Properties: map[string]string{"role": "job_title", "since": "start_year"},
		},
		{
			TypeLabel:   "FOLLOWS",
			Table:       "follows",
			FromColumn:  "follower_id",
			ToColumn:    "followee_id",
			Properties:  map[string]string{"since": "since_year"},
			Orientation: catalog.OrientAmbiguous,
		},
	}

	return catalog.NewStaticCatalog(nodes, rels)
}
