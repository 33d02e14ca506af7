// ABOUTME: Static side-effect tables: term descriptions, exclusions, form suffixes, fallback lists.
// ABOUTME: Keys are lowercase; consumers go through the functions in normalize.go.
package lookup

var descriptions = map[string]string{
	"nausea":                    "Feeling sick to your stomach or like you might vomit.",
	"vomiting":                  "Throwing up the contents of the stomach.",
	"diarrhoea":                 "Loose or watery stools, more often than usual.",
	"diarrhea":                  "Loose or watery stools, more often than usual.",
	"constipation":              "Infrequent or difficult bowel movements.",
	"headache":                  "Pain or pressure in the head.",
	"dizziness":                 "Feeling lightheaded, unsteady or faint.",
	"drowsiness":                "Feeling sleepy or less alert during the day.",
	"somnolence":                "Feeling sleepy or less alert during the day.",
	"fatigue":                   "Ongoing tiredness or lack of energy.",
	"insomnia":                  "Trouble falling asleep or staying asleep.",
	"dry mouth":                 "Reduced saliva, leaving the mouth feeling dry or sticky.",
	"weight increased":          "Gaining weight without a change in diet or activity.",
	"weight gain":               "Gaining weight without a change in diet or activity.",
	"weight decreased":          "Losing weight without trying.",
	"weight loss":               "Losing weight without trying.",
	"decreased appetite":        "Eating less because you feel less hungry.",
	"increased appetite":        "Feeling hungrier than usual.",
	"anxiety":                   "Feelings of worry, nervousness or unease.",
	"agitation":                 "Restlessness, irritability or feeling on edge.",
	"tremor":                    "Shaking or trembling, often of the hands.",
	"sweating":                  "Sweating more than usual, including at night.",
	"hyperhidrosis":             "Sweating more than usual, including at night.",
	"rash":                      "Red, itchy or irritated skin.",
	"pruritus":                  "Itchy skin.",
	"itching":                   "Itchy skin.",
	"sexual dysfunction":        "Changes in sexual desire, arousal or performance.",
	"libido decreased":          "Reduced interest in sex.",
	"blurred vision":            "Difficulty seeing clearly or focusing.",
	"palpitations":              "Noticeable, fast or irregular heartbeat.",
	"tachycardia":               "A faster than normal heart rate.",
	"hypotension":               "Low blood pressure, which can cause lightheadedness.",
	"hypertension":              "High blood pressure.",
	"abdominal pain":            "Pain or cramping in the stomach area.",
	"dyspepsia":                 "Indigestion or an uncomfortable, full feeling after eating.",
	"heartburn":                 "A burning feeling in the chest after eating.",
	"muscle pain":               "Aches or soreness in the muscles.",
	"myalgia":                   "Aches or soreness in the muscles.",
	"arthralgia":                "Pain in the joints.",
	"back pain":                 "Pain in the upper or lower back.",
	"cough":                     "A persistent dry or tickly cough.",
	"swelling":                  "Puffiness from fluid build-up, often in the ankles or feet.",
	"oedema peripheral":         "Swelling of the ankles, feet or legs.",
	"edema":                     "Swelling from fluid build-up in the body.",
	"depression":                "Low mood, loss of interest or feelings of hopelessness.",
	"irritability":              "Becoming annoyed or frustrated more easily.",
	"confusion":                 "Difficulty thinking clearly or concentrating.",
	"memory impairment":         "Trouble remembering things.",
	"disturbance in attention":  "Difficulty focusing or staying on task.",
	"nightmare":                 "Vivid or disturbing dreams.",
	"abnormal dreams":           "Vivid or unusual dreams.",
	"yawning":                   "Yawning more often than usual.",
	"flushing":                  "Sudden warmth and redness of the face or neck.",
	"hair loss":                 "Thinning or shedding of hair.",
	"alopecia":                  "Thinning or shedding of hair.",
	"bruising":                  "Bruising more easily than usual.",
	"hypoglycaemia":             "Low blood sugar, which can cause shakiness, sweating or confusion.",
	"hypoglycemia":              "Low blood sugar, which can cause shakiness, sweating or confusion.",
	"lactic acidosis":           "A rare build-up of acid in the blood; seek urgent care.",
	"muscle spasms":             "Sudden involuntary muscle tightening.",
	"restlessness":              "An inability to sit still or relax.",
	"akathisia":                 "An inner restlessness and urge to keep moving.",
	"gastrointestinal disorder": "Upset stomach or changes in digestion.",
	"flatulence":                "Passing more gas than usual.",
	"taste disturbance":         "Changes in how food tastes, often metallic.",
	"dysgeusia":                 "Changes in how food tastes, often metallic.",
	"photosensitivity":          "Skin that burns or reacts more easily in sunlight.",
	"suicidal ideation":         "Thoughts of self-harm or suicide; seek help immediately.",
	"seizure":                   "Uncontrolled electrical activity in the brain; seek urgent care.",
}

// excluded lists reporting terms that describe events around the drug rather
// than symptoms the patient experiences.
var excluded = setOf(
	"medication error",
	"drug abuse",
	"drug dependence",
	"death",
	"completed suicide",
	"off label use",
	"drug ineffective",
	"drug interaction",
	"product use issue",
	"product use in unapproved indication",
	"intentional overdose",
	"overdose",
	"toxicity to various agents",
	"intentional product misuse",
	"incorrect dose administered",
	"wrong technique in product usage process",
	"drug exposure during pregnancy",
	"exposure during pregnancy",
	"foetal exposure during pregnancy",
	"maternal exposure during pregnancy",
	"no adverse event",
	"condition aggravated",
	"therapeutic response unexpected",
	"drug withdrawal syndrome",
	"inappropriate schedule of product administration",
	"product quality issue",
	"hospitalisation",
)

// formSuffixes are tokens that name a salt or release form rather than the
// active ingredient.
var formSuffixes = map[string]struct{}{
	"hcl":              {},
	"hydrochloride":    {},
	"hydrobromide":     {},
	"sodium":           {},
	"potassium":        {},
	"calcium":          {},
	"magnesium":        {},
	"succinate":        {},
	"tartrate":         {},
	"maleate":          {},
	"mesylate":         {},
	"besylate":         {},
	"citrate":          {},
	"sulfate":          {},
	"sulphate":         {},
	"fumarate":         {},
	"acetate":          {},
	"phosphate":        {},
	"bromide":          {},
	"er":               {},
	"xr":               {},
	"sr":               {},
	"cr":               {},
	"xl":               {},
	"la":               {},
	"dr":               {},
	"ir":               {},
	"odt":              {},
	"extended-release": {},
	"extended":         {},
	"delayed-release":  {},
	"delayed":          {},
	"release":          {},
	"tablet":           {},
	"tablets":          {},
	"capsule":          {},
	"capsules":         {},
}

var fallbackMedications = map[string][]string{
	"sertraline":      {"nausea", "diarrhea", "insomnia", "dizziness", "dry mouth", "fatigue", "sweating", "tremor", "sexual dysfunction", "headache", "decreased appetite", "agitation"},
	"fluoxetine":      {"nausea", "headache", "insomnia", "anxiety", "drowsiness", "diarrhea", "dry mouth", "sweating", "tremor", "decreased appetite", "sexual dysfunction", "yawning"},
	"escitalopram":    {"nausea", "insomnia", "sweating", "fatigue", "drowsiness", "dry mouth", "sexual dysfunction", "headache", "dizziness", "constipation", "yawning"},
	"citalopram":      {"nausea", "dry mouth", "drowsiness", "insomnia", "sweating", "tremor", "diarrhea", "sexual dysfunction", "fatigue", "yawning"},
	"paroxetine":      {"nausea", "drowsiness", "dry mouth", "sweating", "constipation", "dizziness", "insomnia", "tremor", "sexual dysfunction", "weight gain", "headache", "blurred vision"},
	"venlafaxine":     {"nausea", "headache", "dry mouth", "dizziness", "insomnia", "sweating", "constipation", "drowsiness", "anxiety", "hypertension", "sexual dysfunction", "decreased appetite"},
	"duloxetine":      {"nausea", "dry mouth", "constipation", "fatigue", "drowsiness", "decreased appetite", "sweating", "dizziness", "insomnia", "headache"},
	"bupropion":       {"dry mouth", "insomnia", "headache", "nausea", "agitation", "anxiety", "tremor", "sweating", "constipation", "dizziness", "weight loss", "seizure"},
	"mirtazapine":     {"drowsiness", "increased appetite", "weight gain", "dry mouth", "constipation", "dizziness", "abnormal dreams", "fatigue", "edema"},
	"quetiapine":      {"drowsiness", "dry mouth", "dizziness", "weight gain", "constipation", "fatigue", "increased appetite", "hypotension", "tachycardia", "blurred vision"},
	"aripiprazole":    {"akathisia", "nausea", "headache", "insomnia", "anxiety", "restlessness", "drowsiness", "constipation", "weight gain", "blurred vision"},
	"lamotrigine":     {"rash", "headache", "dizziness", "nausea", "blurred vision", "drowsiness", "insomnia", "tremor", "back pain", "fatigue"},
	"lithium":         {"tremor", "nausea", "diarrhea", "weight gain", "fatigue", "increased appetite", "dry mouth", "confusion", "muscle spasms", "taste disturbance"},
	"methylphenidate": {"decreased appetite", "insomnia", "headache", "abdominal pain", "nausea", "anxiety", "irritability", "tachycardia", "palpitations", "weight loss", "dry mouth"},
	"amphetamine":     {"decreased appetite", "insomnia", "dry mouth", "headache", "weight loss", "abdominal pain", "anxiety", "irritability", "tachycardia", "nausea"},
	"metformin":       {"nausea", "diarrhea", "abdominal pain", "flatulence", "decreased appetite", "taste disturbance", "vomiting", "dyspepsia", "lactic acidosis"},
	"lisinopril":      {"cough", "dizziness", "headache", "fatigue", "hypotension", "nausea", "diarrhea", "rash"},
	"amlodipine":      {"swelling", "headache", "flushing", "fatigue", "dizziness", "palpitations", "nausea", "abdominal pain"},
	"atorvastatin":    {"muscle pain", "arthralgia", "diarrhea", "nausea", "dyspepsia", "headache", "fatigue", "insomnia"},
	"levothyroxine":   {"palpitations", "tachycardia", "tremor", "insomnia", "sweating", "weight loss", "hair loss", "anxiety", "headache", "diarrhea"},
	"ibuprofen":       {"dyspepsia", "heartburn", "nausea", "abdominal pain", "headache", "dizziness", "rash", "swelling", "bruising"},
	"propranolol":     {"fatigue", "dizziness", "nightmare", "insomnia", "nausea", "hypotension", "depression", "cold extremities"},
	"gabapentin":      {"drowsiness", "dizziness", "fatigue", "swelling", "weight gain", "blurred vision", "confusion", "tremor", "dry mouth"},
	"prednisone":      {"increased appetite", "weight gain", "insomnia", "irritability", "anxiety", "sweating", "hypertension", "edema", "bruising", "headache"},
}

func setOf(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
