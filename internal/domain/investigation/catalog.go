// Package investigation manages the ordering lifecycle and turnaround
// simulation of diagnostic investigations.
package investigation

import "strings"

// Entry describes one orderable investigation type. Turnarounds are in
// simulated minutes and reflect a government-hospital lab.
type Entry struct {
	Turnaround int
	Urgent     int
	Label      string
}

var catalog = map[string]Entry{
	// Haematology and biochemistry
	"cbc":                {120, 30, "Complete Blood Count"},
	"rft":                {150, 45, "Renal Function Test"},
	"lft":                {150, 45, "Liver Function Test"},
	"blood_sugar":        {30, 10, "Blood Sugar (Random)"},
	"rbs":                {30, 10, "Random Blood Sugar"},
	"fbs":                {30, 10, "Fasting Blood Sugar"},
	"urine_routine":      {60, 20, "Urine Routine/Microscopy"},
	"serum_electrolytes": {120, 30, "Serum Electrolytes"},
	"abg":                {20, 10, "Arterial Blood Gas"},
	"hba1c":              {180, 60, "HbA1c"},
	"coagulation":        {120, 30, "PT/INR/aPTT"},
	"pt_inr":             {120, 30, "PT/INR"},
	"blood_group":        {30, 15, "Blood Group & Rh"},
	"crossmatch":         {60, 30, "Crossmatch"},

	// Cardiac and inflammatory markers
	"troponin":      {90, 30, "Troponin I/T"},
	"d_dimer":       {120, 45, "D-Dimer"},
	"bnp":           {120, 45, "BNP/NT-proBNP"},
	"procalcitonin": {180, 60, "Procalcitonin"},
	"blood_culture": {2880, 2880, "Blood Culture (Prelim 24h, Final 48h)"},
	"urine_culture": {2880, 2880, "Urine Culture"},
	"csf_analysis":  {120, 45, "CSF Analysis"},
	"amylase":       {120, 30, "Serum Amylase"},
	"lipase":        {120, 30, "Serum Lipase"},
	"thyroid":       {240, 120, "Thyroid Profile (T3/T4/TSH)"},

	// Serology
	"dengue_ns1":      {60, 30, "Dengue NS1 Antigen"},
	"dengue_serology": {120, 60, "Dengue IgM/IgG"},
	"malaria_smear":   {60, 20, "Peripheral Smear for MP"},
	"malaria_rdt":     {15, 10, "Malaria Rapid Test"},
	"widal":           {120, 60, "Widal Test"},
	"hiv":             {60, 30, "HIV Rapid/ELISA"},
	"hbsag":           {60, 30, "HBsAg"},
	"anti_hcv":        {60, 30, "Anti-HCV"},

	// Imaging
	"xray_chest": {30, 15, "Chest X-ray PA"},
	"xray":       {30, 15, "X-ray"},
	"ecg":        {15, 5, "12-lead ECG"},
	"ultrasound": {120, 30, "USG Abdomen (needs radiology call)"},
	"echo":       {240, 60, "2D Echocardiography"},
	"ct_scan":    {480, 120, "CT Scan (may need referral)"},
	"mri":        {1440, 480, "MRI (usually needs referral)"},
}

var defaultEntry = Entry{180, 60, "Investigation"}

// resultKeywords selects lines from the case lab text relevant to each type.
var resultKeywords = map[string][]string{
	"cbc":                {"cbc", "hemoglobin", "hb ", "wbc", "platelet", "tlc", "dlc"},
	"rft":                {"creatinine", "urea", "bun", "egfr", "rft", "renal"},
	"lft":                {"bilirubin", "sgot", "sgpt", "alt", "ast", "lft", "albumin", "liver"},
	"blood_sugar":        {"blood sugar", "glucose", "rbs", "fbs"},
	"rbs":                {"blood sugar", "glucose", "rbs"},
	"abg":                {"abg", "arterial blood gas", "pao2", "pco2", "ph ", "bicarbonate", "hco3"},
	"troponin":           {"troponin", "trop"},
	"ecg":                {"ecg", "electrocardiogram", "st elevation", "st depression", "qrs", "rhythm"},
	"xray_chest":         {"x-ray", "xray", "chest x", "cxr", "infiltrate", "consolidation"},
	"xray":               {"x-ray", "xray"},
	"ultrasound":         {"usg", "ultrasound", "sonography"},
	"dengue_ns1":         {"ns1", "dengue"},
	"dengue_serology":    {"dengue igm", "dengue igg"},
	"malaria_smear":      {"peripheral smear", "malaria", "mp"},
	"malaria_rdt":        {"malaria rapid", "rdt"},
	"blood_culture":      {"blood culture", "bacteremia"},
	"serum_electrolytes": {"sodium", "potassium", "electrolyte", "na+", "k+"},
	"coagulation":        {"pt ", "inr", "aptt", "coagulation"},
	"pt_inr":             {"pt ", "inr"},
	"thyroid":            {"tsh", "t3", "t4", "thyroid"},
	"hba1c":              {"hba1c", "glycated"},
	"amylase":            {"amylase"},
	"lipase":             {"lipase"},
	"csf_analysis":       {"csf", "cerebrospinal"},
	"d_dimer":            {"d-dimer", "d dimer"},
	"echo":               {"echo", "echocardiography", "ef ", "ejection fraction", "lvef"},
}

// aliases map common free-text phrasings onto canonical catalog keys.
var aliases = map[string]string{
	"chest_x_ray":          "xray_chest",
	"chest_xray":           "xray_chest",
	"x_ray_chest":          "xray_chest",
	"cxr":                  "xray_chest",
	"x_ray":                "xray",
	"ct":                   "ct_scan",
	"usg":                  "ultrasound",
	"usg_abdomen":          "ultrasound",
	"complete_blood_count": "cbc",
	"electrolytes":         "serum_electrolytes",
	"blood_glucose":        "blood_sugar",
	"12_lead_ecg":          "ecg",
	"ekg":                  "ecg",
}

// NormalizeKey canonicalizes a free-text investigation name, so "Chest X-Ray",
// "chest xray" and "CXR" all resolve to the same catalog key.
func NormalizeKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// Lookup resolves a normalized key against the catalog, falling back to the
// generic entry for unknown types.
func Lookup(key string) (Entry, bool) {
	if e, ok := catalog[key]; ok {
		return e, true
	}
	return defaultEntry, false
}

// Keys returns all catalog keys, for CLI listing.
func Keys() []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	return keys
}
