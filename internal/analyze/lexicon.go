package analyze

// stopwords are excluded from keyword extraction.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "any": true, "can": true,
	"had": true, "her": true, "was": true, "one": true, "our": true,
	"out": true, "has": true, "his": true, "him": true, "how": true,
	"its": true, "may": true, "new": true, "now": true, "old": true,
	"see": true, "two": true, "who": true, "why": true, "way": true,
	"use": true, "get": true, "this": true, "that": true, "with": true,
	"from": true, "your": true, "have": true, "more": true, "will": true,
	"been": true, "were": true, "they": true, "them": true, "than": true,
	"then": true, "what": true, "when": true, "which": true, "while": true,
	"there": true, "their": true, "these": true, "those": true, "would": true,
	"could": true, "should": true, "about": true, "after": true, "before": true,
	"other": true, "into": true, "over": true, "under": true, "also": true,
	"just": true, "only": true, "some": true, "such": true, "very": true,
	"here": true, "where": true, "each": true, "most": true, "much": true,
	"many": true, "being": true, "because": true, "between": true, "both": true,
	"does": true, "doing": true, "down": true, "during": true, "further": true,
	"once": true, "same": true, "through": true, "until": true, "again": true,
}

// misspellings maps common misspellings to their corrections. The
// correction is unused for scoring but kept for report readability.
var misspellings = map[string]string{
	"teh":           "the",
	"recieve":       "receive",
	"recieved":      "received",
	"seperate":      "separate",
	"definately":    "definitely",
	"occured":       "occurred",
	"occurence":     "occurrence",
	"untill":        "until",
	"wich":          "which",
	"accomodate":    "accommodate",
	"acheive":       "achieve",
	"adress":        "address",
	"beleive":       "believe",
	"calender":      "calendar",
	"collegue":      "colleague",
	"comming":       "coming",
	"commited":      "committed",
	"concious":      "conscious",
	"embarass":      "embarrass",
	"enviroment":    "environment",
	"existance":     "existence",
	"familar":       "familiar",
	"finaly":        "finally",
	"goverment":     "government",
	"gaurd":         "guard",
	"happend":       "happened",
	"immediatly":    "immediately",
	"independant":   "independent",
	"knowlege":      "knowledge",
	"liason":        "liaison",
	"maintainance":  "maintenance",
	"neccessary":    "necessary",
	"noticable":     "noticeable",
	"occasionaly":   "occasionally",
	"paralel":       "parallel",
	"posession":     "possession",
	"prefered":      "preferred",
	"publically":    "publicly",
	"realy":         "really",
	"recomend":      "recommend",
	"refered":       "referred",
	"relevent":      "relevant",
	"succesful":     "successful",
	"sucessful":     "successful",
	"supercede":     "supersede",
	"tommorow":      "tomorrow",
	"truely":        "truly",
	"unfortunatly":  "unfortunately",
	"wierd":         "weird",
	"accidentaly":   "accidentally",
	"arguement":     "argument",
	"basicly":       "basically",
	"buisness":      "business",
	"concensus":     "consensus",
	"definitly":     "definitely",
	"dissapoint":    "disappoint",
	"experiance":    "experience",
	"foriegn":       "foreign",
	"grammer":       "grammar",
	"garantee":      "guarantee",
	"harrass":       "harass",
	"informations":  "information",
	"itinery":       "itinerary",
	"millenium":     "millennium",
	"mispell":       "misspell",
	"occassion":     "occasion",
	"persistant":    "persistent",
	"prominant":     "prominent",
	"questionaire":  "questionnaire",
	"rythm":         "rhythm",
	"threshhold":    "threshold",
	"transfered":    "transferred",
	"useable":       "usable",
	"wether":        "whether",
	"withold":       "withhold",
	"writting":      "writing",
	"independantly": "independently",
}
