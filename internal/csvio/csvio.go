// Package csvio loads company CSVs and writes enriched exports. Header
// alias resolution happens exactly once here at load time; downstream
// packages only see the canonical schema.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/expo-enrich/internal/model"
)

// Header aliases accepted for each canonical input column, matched
// case-insensitively after trimming and collapsing separators.
var (
	nameAliases        = []string{"name", "company", "company name", "company_name", "exhibitor", "exhibitor name"}
	websiteAliases     = []string{"website", "url", "web", "site", "company website", "homepage", "domain"}
	linkedInAliases    = []string{"linkedin_url", "linkedin", "linkedin url", "li url", "linkedin page"}
	employeeAliases    = []string{"employee_count", "employees", "employee count", "headcount", "company size", "size"}
	descriptionAliases = []string{"description", "about", "company description", "summary"}
)

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("-", " ", "_", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

func matchAlias(h string, aliases []string) bool {
	n := normalizeHeader(h)
	for _, a := range aliases {
		if n == normalizeHeader(a) {
			return true
		}
	}
	return false
}

// Setters re-hydrating the enrichment columns of a previously exported
// CSV, so a resumed run reloads the collection in the exact state the
// writer checkpointed. Keys are normalized header names.
var enrichmentSetters = map[string]func(c *model.Company, v string){
	"linkedin source":        func(c *model.Company, v string) { c.LinkedInSource = v },
	"employee range":         func(c *model.Company, v string) { c.EmployeeRange = v },
	"employee data source":   func(c *model.Company, v string) { c.EmployeeDataSource = v },
	"has funding data":       func(c *model.Company, v string) { c.HasFundingData = parseBool(v) },
	"has recent funding 1yr": func(c *model.Company, v string) { c.HasRecentFunding = parseBool(v) },
	"funding details":        func(c *model.Company, v string) { c.FundingDetails = v },
	"last funding date":      func(c *model.Company, v string) { c.LastFundingDate = parseDate(v) },
	"crunchbase url":         func(c *model.Company, v string) { c.CrunchbaseURL = v },
	"funding rounds":         func(c *model.Company, v string) { c.FundingRounds = v },
	"total funding":          func(c *model.Company, v string) { c.TotalFunding = v },
	"funding data sources":   func(c *model.Company, v string) { c.FundingDataSources = splitList(v) },
	"funding confidence":     func(c *model.Company, v string) { c.FundingConfidence = parseFloat(v) },
	"has recent jobs":        func(c *model.Company, v string) { c.HasRecentJobs = parseBool(v) },
	"has sales jobs":         func(c *model.Company, v string) { c.HasSalesJobs = parseBool(v) },
	"has marketing jobs":     func(c *model.Company, v string) { c.HasMarketingJobs = parseBool(v) },
	"has bd jobs":            func(c *model.Company, v string) { c.HasBDJobs = parseBool(v) },
	"recent job titles":      func(c *model.Company, v string) { c.RecentJobTitles = splitList(v) },
	"job posting dates":      func(c *model.Company, v string) { c.JobPostingDates = splitList(v) },
	"recent job count":       func(c *model.Company, v string) { c.RecentJobCount = parseInt(v) },
	"hiring urgency":         func(c *model.Company, v string) { c.HiringUrgency = v },
	"job data sources":       func(c *model.Company, v string) { c.JobDataSources = splitList(v) },
	"job confidence":         func(c *model.Company, v string) { c.JobConfidence = parseFloat(v) },
	"priority score":         func(c *model.Company, v string) { c.PriorityScore = parseInt(v) },
	"processing date":        func(c *model.Company, v string) { c.ProcessingDate = v },
	"processing notes":       func(c *model.Company, v string) { c.ProcessingNotes = v },
}

// enrichmentSetter resolves h to a re-hydration setter, or nil for a
// genuine passthrough column. The in-target-range column carries its
// window bounds in the name, so it matches by prefix.
func enrichmentSetter(h string) func(c *model.Company, v string) {
	n := normalizeHeader(h)
	if strings.HasPrefix(n, "in target range") {
		return func(c *model.Company, v string) { c.InTargetRange = parseBool(v) }
	}
	return enrichmentSetters[n]
}

// Read loads companies from a CSV file. The name column is required;
// website, LinkedIn URL, employee count, and description are resolved
// through their aliases; every other column passes through untouched in
// input order.
func Read(path string) ([]*model.Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csvio: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return read(f)
}

func read(r io.Reader) ([]*model.Company, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "csvio: read header")
	}

	nameIdx, websiteIdx, linkedInIdx, employeeIdx, descIdx := -1, -1, -1, -1, -1
	type passCol struct {
		idx  int
		name string
	}
	type enrichCol struct {
		idx int
		set func(c *model.Company, v string)
	}
	var passthrough []passCol
	var enrich []enrichCol
	origHeaders := make(map[string]string)

	for i, h := range header {
		switch {
		case nameIdx < 0 && matchAlias(h, nameAliases):
			nameIdx = i
			origHeaders["name"] = strings.TrimSpace(h)
		case websiteIdx < 0 && matchAlias(h, websiteAliases):
			websiteIdx = i
			origHeaders["website"] = strings.TrimSpace(h)
		case linkedInIdx < 0 && matchAlias(h, linkedInAliases):
			linkedInIdx = i
		case employeeIdx < 0 && matchAlias(h, employeeAliases):
			employeeIdx = i
		case descIdx < 0 && matchAlias(h, descriptionAliases):
			descIdx = i
			origHeaders["description"] = strings.TrimSpace(h)
		default:
			if set := enrichmentSetter(h); set != nil {
				enrich = append(enrich, enrichCol{idx: i, set: set})
			} else {
				passthrough = append(passthrough, passCol{idx: i, name: strings.TrimSpace(h)})
			}
		}
	}
	if nameIdx < 0 {
		return nil, eris.Errorf("csvio: no company-name column found in header %v", header)
	}

	field := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var companies []*model.Company
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csvio: read row")
		}

		c := &model.Company{
			Name:        field(row, nameIdx),
			Website:     field(row, websiteIdx),
			Description: field(row, descIdx),
			Extra:       make(map[string]string),
		}
		if c.Name == "" {
			continue
		}
		if url := field(row, linkedInIdx); url != "" {
			c.SetLinkedInURL(url, "input")
		}
		if raw := field(row, employeeIdx); raw != "" {
			if n := model.ParseEmployeeCount(raw); n > 0 {
				c.EmployeeCount = n
			} else if _, _, ok := model.ParseEmployeeRange(raw); ok {
				c.EmployeeRange = raw
			}
		}
		for _, pc := range passthrough {
			c.Extra[pc.name] = field(row, pc.idx)
			c.ExtraOrder = append(c.ExtraOrder, pc.name)
		}
		for _, ec := range enrich {
			if v := field(row, ec.idx); v != "" {
				ec.set(c, v)
			}
		}
		c.InputHeaders = origHeaders
		companies = append(companies, c)
	}

	return companies, nil
}

// Enrichment columns appended after the original columns, in export order.
// The in-target-range column is dynamic (window bounds in the name) and is
// spliced in after employee_range.
var enrichmentColumnsHead = []string{
	"linkedin_url",
	"linkedin_source",
	"employee_count",
	"employee_range",
}

var enrichmentColumnsTail = []string{
	"employee_data_source",
	"has_funding_data",
	"has_recent_funding_1yr",
	"funding_details",
	"last_funding_date",
	"crunchbase_url",
	"funding_rounds",
	"total_funding",
	"funding_data_sources",
	"funding_confidence",
	"has_recent_jobs",
	"has_sales_jobs",
	"has_marketing_jobs",
	"has_bd_jobs",
	"recent_job_titles",
	"job_posting_dates",
	"recent_job_count",
	"hiring_urgency",
	"job_data_sources",
	"job_confidence",
	"priority_score",
	"processing_date",
	"processing_notes",
}

// Write serializes the collection: name, website, description, the
// pass-through original columns, then the enrichment columns in fixed
// order. Booleans render as TRUE/FALSE; lists join with "; ".
func Write(path string, companies []*model.Company, windowMin, windowMax int) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "csvio: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := write(f, companies, windowMin, windowMax); err != nil {
		return err
	}
	return eris.Wrap(f.Sync(), "csvio: sync output")
}

func write(w io.Writer, companies []*model.Company, windowMin, windowMax int) error {
	cw := csv.NewWriter(w)

	extraCols := extraColumns(companies)
	header := []string{
		headerName(companies, "name"),
		headerName(companies, "website"),
		headerName(companies, "description"),
	}
	header = append(header, extraCols...)
	header = append(header, enrichmentColumnsHead...)
	header = append(header, fmt.Sprintf("in_target_range_%d_%d", windowMin, windowMax))
	header = append(header, enrichmentColumnsTail...)

	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "csvio: write header")
	}

	for _, c := range companies {
		row := []string{c.Name, c.Website, c.Description}
		for _, col := range extraCols {
			row = append(row, c.Extra[col])
		}
		row = append(row,
			c.LinkedInURL,
			c.LinkedInSource,
			formatCount(c.EmployeeCount),
			c.EmployeeRange,
			formatBool(c.InTargetRange),
			c.EmployeeDataSource,
			formatBool(c.HasFundingData),
			formatBool(c.HasRecentFunding),
			c.FundingDetails,
			formatDate(c),
			c.CrunchbaseURL,
			c.FundingRounds,
			c.TotalFunding,
			strings.Join(c.FundingDataSources, "; "),
			formatConfidence(c.FundingConfidence),
			formatBool(c.HasRecentJobs),
			formatBool(c.HasSalesJobs),
			formatBool(c.HasMarketingJobs),
			formatBool(c.HasBDJobs),
			strings.Join(c.RecentJobTitles, "; "),
			strings.Join(c.JobPostingDates, "; "),
			strconv.Itoa(c.RecentJobCount),
			c.HiringUrgency,
			strings.Join(c.JobDataSources, "; "),
			formatConfidence(c.JobConfidence),
			strconv.Itoa(c.PriorityScore),
			c.ProcessingDate,
			c.ProcessingNotes,
		)
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "csvio: write row for %s", c.Name)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "csvio: flush")
}

// extraColumns returns the union of pass-through column names across the
// collection, in first-appearance order.
func extraColumns(companies []*model.Company) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, c := range companies {
		for _, name := range c.ExtraOrder {
			if !seen[name] {
				seen[name] = true
				cols = append(cols, name)
			}
		}
	}
	return cols
}

// headerName returns the original input header text for a canonical
// leading column, falling back to the canonical name.
func headerName(companies []*model.Company, canonical string) string {
	for _, c := range companies {
		if h, ok := c.InputHeaders[canonical]; ok && h != "" {
			return h
		}
	}
	return canonical
}

func parseBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

func parseInt(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseDate(v string) time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(v))
	if err != nil {
		return time.Time{}
	}
	return t
}

// splitList reverses the "; " join used on export.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func formatCount(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func formatConfidence(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDate(c *model.Company) string {
	if c.LastFundingDate.IsZero() {
		return ""
	}
	return c.LastFundingDate.Format("2006-01-02")
}
