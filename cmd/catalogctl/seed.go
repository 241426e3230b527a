// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/timeofcode/platform/pkg/logging"
	"github.com/timeofcode/platform/services/catalog/datatypes"
	"github.com/timeofcode/platform/services/catalog/store"
)

// seedLanguage bundles a language with its subtree of sample content.
type seedLanguage struct {
	lang       datatypes.Language
	categories []seedCategory
}

type seedCategory struct {
	cat    datatypes.Category
	topics []seedTopic
}

type seedTopic struct {
	topic    datatypes.Topic
	articles []datatypes.Article
}

func runSeed(cmd *cobra.Command, args []string) error {
	logger := logging.New(logging.Config{Service: "catalogctl"})
	defer logger.Close()

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := st.Reset(ctx); err != nil {
		return err
	}
	logger.Info("catalog collections dropped")

	var languages, categories, topics, articles int
	for _, sl := range sampleCatalog() {
		lang, err := st.CreateLanguage(ctx, sl.lang)
		if err != nil {
			return err
		}
		languages++

		for _, sc := range sl.categories {
			sc.cat.LanguageID = lang.ID
			cat, err := st.CreateCategory(ctx, sc.cat)
			if err != nil {
				return err
			}
			categories++

			for _, stp := range sc.topics {
				stp.topic.CategoryID = cat.ID
				topic, err := st.CreateTopic(ctx, stp.topic)
				if err != nil {
					return err
				}
				topics++

				if err := seedArticles(ctx, st, topic.ID, stp.articles); err != nil {
					return err
				}
				articles += len(stp.articles)
			}
		}
	}

	logger.Info("sample catalog loaded",
		"languages", languages,
		"categories", categories,
		"topics", topics,
		"articles", articles,
	)
	return nil
}

func seedArticles(ctx context.Context, st *store.Store, topicID string, arts []datatypes.Article) error {
	for _, art := range arts {
		art.TopicID = topicID
		if _, err := st.CreateArticle(ctx, art); err != nil {
			return err
		}
	}
	return nil
}

// sampleCatalog returns the starter dataset: three languages with a
// handful of categories, topics, and articles each. Parent references
// are filled in at insert time.
func sampleCatalog() []seedLanguage {
	return []seedLanguage{
		{
			lang: datatypes.Language{
				Name:        "JavaScript",
				Description: "A versatile programming language that powers the web.",
				Icon:        "javascript-icon",
				Difficulty:  1,
				Popularity:  1,
				Category:    []string{"Web Development"},
			},
			categories: []seedCategory{
				{
					cat: datatypes.Category{
						Name:        "Fundamentals",
						Description: "Core JavaScript concepts and syntax",
						Order:       1,
					},
					topics: []seedTopic{
						{
							topic: datatypes.Topic{
								Title:       "Variables and Data Types",
								Description: "Understanding JavaScript variables and data types",
								Order:       1,
							},
							articles: []datatypes.Article{
								{
									Title: "Introduction to JavaScript Variables",
									Content: "# Introduction to JavaScript Variables\n\n" +
										"JavaScript variables are containers for storing data values.\n\n" +
										"## Variable Declaration\n\n" +
										"There are three ways to declare variables in JavaScript:\n\n" +
										"```javascript\n" +
										"var x = 5;       // The old way (avoid using var)\n" +
										"let y = 6;       // The modern way for variables that can change\n" +
										"const z = 7;     // For variables that won't change\n" +
										"```\n\n" +
										"## Best Practices\n\n" +
										"1. Use meaningful variable names\n" +
										"2. Use camelCase for variable names\n" +
										"3. Prefer `const` when the value won't change\n" +
										"4. Use `let` instead of `var`",
									Order: 1,
									Examples: []datatypes.CodeExample{
										{
											Code:        "let name = \"John\";\nconst age = 25;\nvar isStudent = true;",
											Language:    "javascript",
											Description: "Basic variable declarations",
										},
									},
								},
								{
									Title: "Understanding JavaScript Data Types",
									Content: "JavaScript has several data types that can be broadly " +
										"categorized into primitive types (String, Number, Boolean, " +
										"Undefined, Null, Symbol, BigInt) and reference types " +
										"(Object, Array, Function).",
									Order: 2,
									Examples: []datatypes.CodeExample{
										{
											Code:        "const str = \"Hello\";\nconst num = 42;\nconst arr = [1, 2, 3];\nconst obj = { key: \"value\" };",
											Language:    "javascript",
											Description: "Examples of different data types",
										},
									},
								},
							},
						},
						{
							topic: datatypes.Topic{
								Title:       "Functions and Scope",
								Description: "Working with functions and understanding scope",
								Order:       2,
							},
							articles: []datatypes.Article{
								{
									Title: "JavaScript Functions Fundamentals",
									Content: "Functions are one of the fundamental building blocks in " +
										"JavaScript. A function is a reusable block of code that " +
										"performs a specific task. Key concepts: declarations vs " +
										"expressions, arrow functions, parameters, return values, " +
										"and scope.",
									Order: 1,
									Examples: []datatypes.CodeExample{
										{
											Code:        "function greet(name) {\n  return `Hello, ${name}!`;\n}\n\nconst add = (a, b) => a + b;",
											Language:    "javascript",
											Description: "Different ways to declare functions",
										},
									},
								},
							},
						},
						{
							topic: datatypes.Topic{
								Title:       "Control Flow",
								Description: "Conditionals, loops, and control structures",
								Order:       3,
							},
						},
					},
				},
				{
					cat: datatypes.Category{
						Name:        "DOM Manipulation",
						Description: "Working with the Document Object Model",
						Order:       2,
					},
					topics: []seedTopic{
						{
							topic: datatypes.Topic{
								Title:       "DOM Selection",
								Description: "Selecting and accessing DOM elements",
								Order:       1,
							},
							articles: []datatypes.Article{
								{
									Title: "Selecting DOM Elements",
									Content: "The Document Object Model (DOM) provides several methods " +
										"to select HTML elements: getElementById, querySelector, " +
										"querySelectorAll, getElementsByClassName, and " +
										"getElementsByTagName. Each has its own use case and " +
										"performance implications.",
									Order: 1,
									Examples: []datatypes.CodeExample{
										{
											Code:        "const element = document.getElementById(\"myId\");\nconst elements = document.querySelectorAll(\".myClass\");",
											Language:    "javascript",
											Description: "Common DOM selection methods",
										},
									},
								},
							},
						},
						{
							topic: datatypes.Topic{
								Title:       "Event Handling",
								Description: "Working with DOM events and event listeners",
								Order:       2,
							},
						},
					},
				},
				{
					cat: datatypes.Category{
						Name:        "Async Programming",
						Description: "Promises, async/await, and callbacks",
						Order:       3,
					},
					topics: []seedTopic{
						{
							topic: datatypes.Topic{
								Title:       "Promises",
								Description: "Understanding and working with Promises",
								Order:       1,
							},
						},
						{
							topic: datatypes.Topic{
								Title:       "Async/Await",
								Description: "Modern asynchronous programming with async/await",
								Order:       2,
							},
						},
					},
				},
			},
		},
		{
			lang: datatypes.Language{
				Name:        "Python",
				Description: "A high-level programming language known for its simplicity and readability.",
				Icon:        "python-icon",
				Difficulty:  1,
				Popularity:  2,
				Category:    []string{"General Purpose"},
			},
			categories: []seedCategory{
				{
					cat: datatypes.Category{
						Name:        "Basics",
						Description: "Fundamental Python concepts",
						Order:       1,
					},
					topics: []seedTopic{
						{
							topic: datatypes.Topic{
								Title:       "Python Variables",
								Description: "Understanding Python variables and data types",
								Order:       1,
							},
							articles: []datatypes.Article{
								{
									Title: "Python Variables and Data Types",
									Content: "Python variables are created when you assign a value to " +
										"them. Python is dynamically typed, so you don't declare " +
										"the type explicitly. Common data types: numbers (int, " +
										"float), strings, booleans, and None.",
									Order: 1,
									Examples: []datatypes.CodeExample{
										{
											Code:        "name = \"Python\"\nage = 30\nheight = 1.75\nis_programming = True\n\nprint(type(name))  # <class \"str\">\nprint(type(age))   # <class \"int\">",
											Language:    "python",
											Description: "Python variable declarations and types",
										},
									},
								},
							},
						},
						{
							topic: datatypes.Topic{
								Title:       "Control Structures",
								Description: "Python if statements, loops, and control flow",
								Order:       2,
							},
						},
					},
				},
				{
					cat: datatypes.Category{
						Name:        "Data Structures",
						Description: "Built-in Python data structures",
						Order:       2,
					},
					topics: []seedTopic{
						{
							topic: datatypes.Topic{
								Title:       "Lists and Tuples",
								Description: "Working with Python lists and tuples",
								Order:       1,
							},
						},
						{
							topic: datatypes.Topic{
								Title:       "Dictionaries",
								Description: "Understanding Python dictionaries",
								Order:       2,
							},
						},
					},
				},
			},
		},
		{
			lang: datatypes.Language{
				Name:        "TypeScript",
				Description: "A typed superset of JavaScript that adds optional static typing.",
				Icon:        "typescript-icon",
				Difficulty:  2,
				Popularity:  3,
				Category:    []string{"Web Development"},
			},
			categories: []seedCategory{
				{
					cat: datatypes.Category{
						Name:        "Type System",
						Description: "TypeScript type system basics",
						Order:       1,
					},
				},
				{
					cat: datatypes.Category{
						Name:        "Advanced Types",
						Description: "Advanced TypeScript type features",
						Order:       2,
					},
				},
			},
		},
	}
}
