package detail

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobsift/dice-crawler/internal/jobs"
)

// Marker attributes and class names on the detail page. The chip class is a
// build artifact of the site's CSS modules and changes rarely; when it does,
// extraction degrades to empty groups rather than failing the run.
const (
	titleSelector        = `h1[data-cy="jobTitle"]`
	companySelector      = `a[data-cy="companyNameLink"]`
	locationSelector     = `li[data-cy="location"]`
	postedDateSelector   = `li[data-cy="postedDate"]`
	overviewSelector     = `div.job-overview_jobDetails__kBakg`
	overviewItemSelector = `div.job-overview_detailContainer__TpXMD`
	chipSelector         = `div.chip_chip__cYJs6`
	skillsListSelector   = `div[data-cy="skillsList"]`
	descriptionSelector  = `div[data-testid="jobDescriptionHtml"]`
	legalInfoSelector    = `ul.legalInfo li.legalInfo`

	skillChipPrefix = "skillChip: "
	diceIDLabel     = "Dice Id:"
	positionIDLabel = "Position Id:"
)

func parseBasicInfo(doc *goquery.Document) jobs.BasicInfo {
	return jobs.BasicInfo{
		Title:       firstText(doc, titleSelector),
		CompanyName: firstText(doc, companySelector),
		Location:    firstText(doc, locationSelector),
		PostedDate:  firstText(doc, postedDateSelector),
	}
}

// parseOverview classifies each overview chip's text by substring. Chips are
// scoped to the overview block's detail containers; chips elsewhere in the
// block are not overview values. The classification is last-write-wins per
// bucket: when two chips match the same rule, the later one in document order
// overwrites the earlier.
func parseOverview(doc *goquery.Document) jobs.Overview {
	var ov jobs.Overview
	doc.Find(overviewSelector).Find(overviewItemSelector).Find(chipSelector).Each(func(_ int, chip *goquery.Selection) {
		classifyChip(&ov, strings.TrimSpace(chip.Text()))
	})
	return ov
}

func classifyChip(ov *jobs.Overview, text string) {
	switch {
	case strings.Contains(text, "USD"):
		ov.Salary = text
	case strings.Contains(text, "On Site") || strings.Contains(text, "Remote"):
		ov.WorkType = text
	case strings.Contains(text, "Time"):
		ov.EmploymentType = text
	}
}

// parseSkills collects chip texts from the skills container in page order,
// stripping the literal prefix token some chips carry.
func parseSkills(doc *goquery.Document) []string {
	skills := []string{}
	doc.Find(skillsListSelector).Find(chipSelector).Each(func(_ int, chip *goquery.Selection) {
		skills = append(skills, strings.TrimPrefix(strings.TrimSpace(chip.Text()), skillChipPrefix))
	})
	return skills
}

// parseMetadata scans the legal-info list items, stripping the known label
// prefixes to populate the site identifiers.
func parseMetadata(doc *goquery.Document) jobs.Metadata {
	var meta jobs.Metadata
	doc.Find(legalInfoSelector).Each(func(_ int, item *goquery.Selection) {
		text := strings.TrimSpace(item.Text())
		switch {
		case strings.Contains(text, diceIDLabel):
			meta.DiceID = strings.TrimSpace(strings.ReplaceAll(text, diceIDLabel, ""))
		case strings.Contains(text, positionIDLabel):
			meta.PositionID = strings.TrimSpace(strings.ReplaceAll(text, positionIDLabel, ""))
		}
	})
	return meta
}

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}
