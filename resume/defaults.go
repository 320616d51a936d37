package resume

// SampleDocument returns the starter resume new editor sessions are seeded with.
func SampleDocument() Document {
	return Document{
		ID:       "resume-sample",
		Name:     "My Resume",
		Template: DefaultTemplate,
		Content: Content{
			PersonalInfo: PersonalInfo{
				FullName: "Alex Johnson",
				JobTitle: "Software Developer",
				Email:    "alex.johnson@example.com",
				Phone:    "(555) 123-4567",
				Location: "New York, NY",
				LinkedIn: "linkedin.com/in/alexjohnson",
				Website:  "alexjohnson.dev",
			},
			Summary: "Experienced software developer with a passion for creating elegant, efficient solutions. " +
				"Skilled in full-stack development with expertise in React, Node.js, and cloud technologies.",
			Experience: []ExperienceItem{
				{
					ID:          "exp-1",
					Title:       "Senior Software Developer",
					Company:     "Tech Innovations Inc.",
					Location:    "New York, NY",
					StartDate:   "2020-01",
					EndDate:     "Present",
					Description: "Lead developer for client-facing web applications",
					Highlights: []string{
						"Developed and maintained multiple React-based web applications",
						"Implemented CI/CD pipelines reducing deployment time by 40%",
						"Mentored junior developers and conducted code reviews",
						"Optimized database queries resulting in 30% performance improvement",
					},
				},
			},
			Education: []EducationItem{
				{
					ID:          "edu-1",
					Degree:      "Bachelor of Science in Computer Science",
					Institution: "University of Technology",
					Location:    "Boston, MA",
					StartDate:   "2012-09",
					EndDate:     "2016-05",
					GPA:         "3.8",
				},
			},
			Skills: []string{"JavaScript", "TypeScript", "React", "Node.js", "AWS", "Docker", "GraphQL", "SQL", "MongoDB", "Git"},
			Certifications: []CertificationItem{
				{
					ID:     "cert-1",
					Name:   "AWS Certified Solutions Architect",
					Issuer: "Amazon Web Services",
					Date:   "2021-06",
					URL:    "https://aws.amazon.com/certification/",
				},
			},
			Languages: []LanguageItem{
				{ID: "lang-1", Language: "English", Proficiency: ProficiencyNative},
			},
			Projects: []ProjectItem{
				{
					ID:           "proj-1",
					Name:         "E-commerce Platform",
					Description:  "Developed a full-stack e-commerce platform with React and Node.js",
					Technologies: []string{"React", "Node.js", "Express", "MongoDB"},
					StartDate:    "2019-03",
					EndDate:      "2019-09",
				},
			},
		},
	}
}
