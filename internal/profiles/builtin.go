package profiles

import (
	"sort"

	"github.com/user/pane-scraper/internal/entity"
)

// Site selectors live here because the target sites change their DOM often.
// Update these when a run starts reporting sentinels everywhere.

// LinkedInJobs clicks through a LinkedIn job search and reads the detail pane.
// LinkedIn requires a logged-in session, so the run waits for the operator.
func LinkedInJobs() entity.Profile {
	return entity.Profile{
		Name:           "linkedin-jobs",
		Description:    "LinkedIn job search for \"Software engineer\", read from the detail pane",
		Mode:           entity.ModeListing,
		StartURL:       "https://www.linkedin.com/jobs/search/?keywords=Software%20engineer",
		ManualLogin:    true,
		ListSelector:   "ul.jobs-search-results__list",
		ScrollSelector: "ul.jobs-search-results__list",
		ItemSelector:   "li.occludable-update",
		Fields: []entity.FieldSpec{
			{Name: "Job Title", Selector: "h2.jobs-unified-top-card__job-title", Sentinel: "N/A"},
			{Name: "Company Name", Selector: "span.jobs-unified-top-card__company-name", Sentinel: "N/A"},
			{Name: "Description", Selector: "div.jobs-description-content__text", Sentinel: "N/A"},
		},
		Output: "linkedin_jobs.csv",
	}
}

// YCCompanies visits the detail page of each company in the YC AI directory.
func YCCompanies() entity.Profile {
	const companyLinks = `a.shrink-0[href^="/companies/"]`
	return entity.Profile{
		Name:          "yc-ai-companies",
		Description:   "Y Combinator AI companies: description, website and page text",
		Mode:          entity.ModeDetail,
		StartURL:      "https://www.ycombinator.com/companies/industry/ai",
		BaseURL:       "https://www.ycombinator.com",
		ListSelector:  companyLinks,
		ItemSelector:  companyLinks,
		LinkAttribute: "href",
		ReadySelector: "h1",
		MaxItems:      100,
		Fields: []entity.FieldSpec{
			{Name: "Company Name", Selector: "h1", Required: true},
			{Name: "Description", Selector: "div.prose.whitespace-pre-line", Sentinel: "Not found"},
			{Name: "Website Link", Selector: "div.text-linkColor a", Attribute: "href", Sentinel: "Not found"},
			{Name: "Visible Page Text", Selector: "body"},
		},
		Output: "yc_ai_companies.csv",
	}
}

// Builtin returns every built-in profile keyed by name.
func Builtin() map[string]entity.Profile {
	out := map[string]entity.Profile{}
	for _, p := range []entity.Profile{LinkedInJobs(), YCCompanies()} {
		out[p.Name] = p
	}
	return out
}

// Names lists the built-in profile names in sorted order.
func Names() []string {
	b := Builtin()
	names := make([]string, 0, len(b))
	for n := range b {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
