// ABOUTME: Bootstrap accounts, sample posts and sample comments for first runs
// ABOUTME: Sample vote tallies are backed by voteByUser so totals always reconcile

package store

import "time"

const day = 24 * time.Hour

// SampleUsers returns the bootstrap accounts, with plaintext passwords.
func SampleUsers() []User {
	return []User{
		{ID: "u_theo", Username: "theo", Password: "1234", Avatar: DefaultAvatar},
		{ID: "u_marc", Username: "marc", Password: "1234", Avatar: "/avatars/mj.png"},
		{ID: "u_nathaniel", Username: "nathaniel", Password: "1234", Avatar: DefaultAvatar},
		{ID: "u_ian", Username: "ian", Password: "1234", Avatar: DefaultAvatar},
		{ID: "u_arturo", Username: "arturo", Password: "1234", Avatar: "/avatars/arturo.png"},
	}
}

func sumVotes(voteByUser map[string]int) int {
	total := 0
	for _, v := range voteByUser {
		total += v
	}
	return total
}

func samplePost(p Post) Post {
	p.Votes = sumVotes(p.VoteByUser)
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}

// SamplePosts returns the sample feed, newest first, dated relative to now.
func SamplePosts(now time.Time) []Post {
	at := func(d time.Duration) Timestamp { return TimestampOf(now.Add(-d)) }

	return []Post{
		samplePost(Post{
			ID:    "sample_post_1",
			Title: "Need help choosing a beginner split (3 days/week, 60 mins per session)",
			Body: "I just started lifting last month and can only train Monday, Wednesday, and Friday after classes. " +
				"I want to build strength first but still improve my physique. Right now I do random machines and I feel like I'm not progressing.\n\n" +
				"Would you recommend full body 3x/week or a push/pull/legs setup adjusted for 3 days? " +
				"If possible, can someone suggest a simple structure with sets/reps I can follow for at least 8 weeks?",
			Tag:          "Beginners",
			Author:       "theo",
			AuthorID:     "u_theo",
			CreatedAt:    at(day),
			VoteByUser:   map[string]int{"marc": 1, "ian": 1, "arturo": 1},
			CommentCount: 2,
		}),
		samplePost(Post{
			ID:    "sample_post_2",
			Title: "Weekly meal prep for a cut (budget-friendly, high-protein) - feedback?",
			Body: "I'm currently cutting from 76kg to around 70kg and trying to keep food costs manageable. " +
				"This week's prep is chicken adobo (lean cut), garlic rice portions, boiled eggs, and mixed vegetables packed for 5 workdays.\n\n" +
				"Target is around 1700-1900 kcal/day with at least 130g protein. " +
				"Posting this in case anyone has suggestions to improve variety without increasing cost too much.",
			Tag:          "Meal Prep",
			Author:       "marc",
			AuthorID:     "u_marc",
			CreatedAt:    at(2 * day),
			VoteByUser:   map[string]int{"theo": 1, "nathaniel": 1, "ian": 1, "arturo": 1},
			Images:       []string{"/assets/hcpics/MealPrep.png"},
			CommentCount: 1,
		}),
		samplePost(Post{
			ID:    "sample_post_3",
			Title: "Deadlift form check: hips rise too early near lockout",
			Body: "On my top sets (around RPE 8), my hips shoot up before the bar leaves the floor and the pull turns into a stiff-leg deadlift. " +
				"I can still finish the rep, but my lower back gets smoked and bar speed drops hard.\n\n" +
				"Current setup: conventional deadlift, flat shoes, mixed grip. If you've fixed this before, what cues or accessories helped most?",
			Tag:          "Form",
			Author:       "nathaniel",
			AuthorID:     "u_nathaniel",
			CreatedAt:    at(3 * day),
			VoteByUser:   map[string]int{"ian": 1, "arturo": 1, "marc": -1},
			CommentCount: 1,
		}),
		samplePost(Post{
			ID:    "sample_post_4",
			Title: "8-week body recomposition progress (photos) - from inconsistent to structured",
			Body: "Sharing my 8-week progress for accountability. I stopped program-hopping and stuck to an upper/lower split, " +
				"daily step goal, and a consistent sleep schedule. Biggest changes so far are waistline, shoulders, and overall energy.\n\n" +
				"Still far from my long-term goal, but this is the first time my routine has felt sustainable. " +
				"Posting two progress shots below. Open to feedback on what to prioritize next phase.",
			Tag:          "Physique",
			Author:       "ian",
			AuthorID:     "u_ian",
			CreatedAt:    at(4 * day),
			VoteByUser:   map[string]int{"theo": 1, "marc": 1, "nathaniel": 1, "arturo": 1},
			Images:       []string{"/assets/hcpics/HCProgress1.png", "/assets/hcpics/HCProgress2.png"},
			CommentCount: 1,
		}),
		samplePost(Post{
			ID:    "sample_post_5",
			Title: "Hit my first 100kg bench after 5 months - what should my next milestone be?",
			Body: "Finally pressed 100kg today at 78kg bodyweight. Started at 65kg for working sets and focused on technique, " +
				"pause reps, and adding small jumps weekly. Super happy with this milestone.\n\n" +
				"Question for more experienced lifters: should I focus next on adding reps at 100kg, " +
				"pushing a heavier single, or bringing up weak points first (triceps and upper back)?",
			Tag:          "Success",
			Author:       "arturo",
			AuthorID:     "u_arturo",
			CreatedAt:    at(5 * day),
			VoteByUser:   map[string]int{"theo": 1, "marc": 1, "ian": 1},
			CommentCount: 0,
		}),
	}
}

// SampleComments returns the comments belonging to SamplePosts(now).
func SampleComments(now time.Time) map[string][]Comment {
	at := func(d time.Duration) Timestamp { return TimestampOf(now.Add(-d)) }

	return map[string][]Comment{
		"sample_post_1": {
			{
				ID:        "sample_comment_1",
				PostID:    "sample_post_1",
				Author:    "marc",
				Body:      "For your schedule, full body 3x/week is easier to recover from and progress on.",
				CreatedAt: at(day - time.Hour),
			},
			{
				ID:        "sample_comment_2",
				PostID:    "sample_post_1",
				Author:    "arturo",
				Body:      "Keep each session simple: squat pattern, press, hinge, pull, then one core movement.",
				CreatedAt: at(day - 2*time.Hour),
			},
		},
		"sample_post_2": {
			{
				ID:        "sample_comment_3",
				PostID:    "sample_post_2",
				Author:    "theo",
				Body:      "Try rotating tofu and monggo with your chicken meals so cutting doesn't feel repetitive.",
				CreatedAt: at(2*day - 45*time.Minute),
			},
		},
		"sample_post_3": {
			{
				ID:        "sample_comment_4",
				PostID:    "sample_post_3",
				Author:    "ian",
				Body:      "Big cue that helped me: pull the slack out first, lock lats, then push the floor away.",
				CreatedAt: at(3*day - 30*time.Minute),
			},
		},
		"sample_post_4": {
			{
				ID:        "sample_comment_5",
				PostID:    "sample_post_4",
				Author:    "nathaniel",
				Body:      "Solid progress. If you want to keep recomping, keep protein high and track weekly average weight.",
				CreatedAt: at(4*day - 20*time.Minute),
			},
		},
	}
}
