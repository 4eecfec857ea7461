package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/ByLCY/reportpress/binding"
)

// DefaultVessel replaces an empty vessel name in file names.
const DefaultVessel = "Geral"

// filenameVars returns the values available to the file name template.
func filenameVars(r *Report, now time.Time) map[string]string {
	vessel := strings.TrimSpace(r.Vessel)
	if vessel == "" {
		vessel = DefaultVessel
	}
	equipment := ""
	if len(r.Equipment) > 0 {
		equipment = r.Equipment[0].Name
	}
	return map[string]string{
		"date":       now.UTC().Format("20060102"),
		"vessel":     vessel,
		"equipment":  equipment,
		"client":     r.Client,
		"work_order": r.WorkOrder,
		"record_id":  r.RecordID,
	}
}

// cleanComponent transliterates a template value and keeps it free of path
// separators and spaces.
func cleanComponent(path, value string) string {
	if path == "date" {
		return value
	}
	return strings.ReplaceAll(slug.Make(value), "-", "_")
}

// Filename expands the file name template for the report. Empty components
// leave no dangling separators and ".pdf" is always appended.
func Filename(template string, r *Report, now time.Time) string {
	if template == "" {
		template = DefaultFilenameTemplate
	}
	name := binding.InterpolateFunc(template, filenameVars(r, now), cleanComponent)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	name = strings.Trim(name, "_-. ")
	if name == "" {
		name = "RS_" + now.UTC().Format("20060102")
	}
	return name + ".pdf"
}

// CheckFilenameTemplate reports placeholders the file name template cannot
// resolve.
func CheckFilenameTemplate(template string) error {
	known := filenameVars(&Report{}, time.Time{})
	var unknown []string
	for _, p := range binding.Placeholders(template) {
		if _, ok := known[p]; !ok {
			unknown = append(unknown, p)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("文件名模板包含未知占位符: %s", strings.Join(unknown, ", "))
	}
	return nil
}
