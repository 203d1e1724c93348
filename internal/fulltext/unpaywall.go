// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fulltext

import "encoding/json"

// unpaywallResponse captures the fields used from an Unpaywall work
// record: the best open-access location plus the alternates.
type unpaywallResponse struct {
	BestOALocation *unpaywallLocation  `json:"best_oa_location"`
	OALocations    []unpaywallLocation `json:"oa_locations"`
}

// unpaywallLocation is one open-access copy of the article.
type unpaywallLocation struct {
	PDFURL string `json:"url_for_pdf"`
	URL    string `json:"url"`
}

// selectOALocation picks the download URL from an Unpaywall response
// body: the best location's PDF URL when present, otherwise the first
// alternate PDF URL, otherwise any alternate URL at all. Returns "" when
// the record offers nothing usable.
func selectOALocation(body []byte) (string, error) {
	var rec unpaywallResponse
	if err := json.Unmarshal(body, &rec); err != nil {
		return "", err
	}

	if rec.BestOALocation != nil && rec.BestOALocation.PDFURL != "" {
		return rec.BestOALocation.PDFURL, nil
	}
	for _, loc := range rec.OALocations {
		if loc.PDFURL != "" {
			return loc.PDFURL, nil
		}
	}
	if rec.BestOALocation != nil && rec.BestOALocation.URL != "" {
		return rec.BestOALocation.URL, nil
	}
	for _, loc := range rec.OALocations {
		if loc.URL != "" {
			return loc.URL, nil
		}
	}
	return "", nil
}
