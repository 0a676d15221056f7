package ai

import "fmt"

// SystemPrompt is shared by every request type.
const SystemPrompt = `You are an expert AI content creator specializing in educational content about AI for beginners, jobseekers, and upskillers. You create engaging, actionable content about micro-courses, toolkits, and digital learning tools.

When generating content, always:
- Use simple, accessible language
- Include practical tips and actionable advice
- Make content engaging with hooks and storytelling
- Focus on helping people learn AI skills for career advancement`

// generateTemplates holds one user prompt per content type. Each takes the topic as its only verb.
var generateTemplates = map[ContentType]string{
	ContentVideo: `Create a comprehensive educational video script about: "%s"

The script should be for a 2-3 minute YouTube video. Include:
1. A strong hook (first 5 seconds to grab attention)
2. Introduction (who this is for and what they'll learn)
3. Main content (3-4 key points with examples)
4. Call-to-action (what viewers should do next)

Format the response as JSON with this structure:
{
  "title": "Video title",
  "hook": "Opening hook text",
  "script": "Full script text",
  "keyPoints": ["point1", "point2", "point3"],
  "cta": "Call to action text"
}`,

	ContentBlog: `Write an educational blog post about: "%s"

The post should be 800-1200 words. Include:
1. An SEO-friendly headline
2. A short introduction that states who the post is for
3. 3-5 sections with subheadings, practical examples and tips
4. A conclusion with a clear call-to-action

Write the content in Markdown. Format the response as JSON with this structure:
{
  "title": "Blog headline",
  "metaDescription": "Meta description under 160 characters",
  "content": "Full Markdown body",
  "keyPoints": ["point1", "point2", "point3"],
  "tags": ["tag1", "tag2"],
  "cta": "Call to action text"
}`,

	ContentCarousel: `Create an educational Instagram/LinkedIn carousel about: "%s"

The carousel should have 8-10 slides:
1. A cover slide with a bold hook
2. One idea per content slide, with a short heading and at most 30 words of body text
3. A final slide with a call-to-action

Format the response as JSON with this structure:
{
  "title": "Carousel title",
  "slides": [
    {"heading": "Slide heading", "body": "Slide text", "visual": "Visual suggestion"}
  ],
  "caption": "Post caption",
  "hashtags": ["#hashtag1", "#hashtag2"]
}`,

	ContentThread: `Write an educational Twitter/X thread about: "%s"

The thread should have 8-12 tweets:
1. The first tweet is a hook that makes people want to read on
2. Each tweet stays under 280 characters and delivers one idea
3. The last tweet summarizes and asks readers to follow or share

Format the response as JSON with this structure:
{
  "hook": "First tweet",
  "tweets": ["tweet 1", "tweet 2", "tweet 3"],
  "hashtags": ["#hashtag1", "#hashtag2"],
  "cta": "Closing call to action"
}`,

	ContentLinkedIn: `Write a single professional LinkedIn post about: "%s"

The post should:
1. Open with a one-line hook
2. Share a personal or practical angle with 3-5 short takeaways
3. Stay between 150 and 300 words with short paragraphs
4. End with a question that invites comments

Format the response as JSON with this structure:
{
  "hook": "Opening line",
  "content": "Full post text",
  "keyPoints": ["takeaway1", "takeaway2", "takeaway3"],
  "hashtags": ["#hashtag1", "#hashtag2"],
  "cta": "Closing question"
}`,

	ContentNewsletter: `Write an educational email newsletter about: "%s"

The newsletter should be 500-700 words. Include:
1. A subject line and a preview text
2. A friendly greeting and a short introduction
3. 2-4 sections with practical tips and resources
4. A sign-off with a call-to-action

Format the response as JSON with this structure:
{
  "subject": "Email subject line",
  "previewText": "Inbox preview text",
  "greeting": "Greeting line",
  "sections": [
    {"heading": "Section heading", "body": "Section text"}
  ],
  "cta": "Call to action text",
  "signOff": "Sign-off line"
}`,
}

const repurposeTemplate = `Take this original YouTube script and repurpose it for multiple platforms:

Original Script: %s

Create adapted versions for each platform. Return JSON with this structure:
{
  "youtube": {
    "title": "Full YouTube title",
    "description": "YouTube description with keywords",
    "hashtags": ["#hashtag1", "#hashtag2"],
    "script": "Original or slightly enhanced script"
  },
  "youtubeShorts": {
    "title": "Short punchy title",
    "hook": "60-second version hook",
    "script": "Condensed 60-second script focusing on ONE key point",
    "hashtags": ["#shorts", "#ai", "etc"]
  },
  "tiktok": {
    "hook": "Trending TikTok-style hook",
    "script": "TikTok-optimized script (casual, fast-paced)",
    "trendSuggestion": "Suggested trend or sound style",
    "hashtags": ["#tiktok", "#ai", "etc"]
  },
  "instagram": {
    "hook": "Instagram Reels hook",
    "script": "Visually-focused script with on-screen text suggestions",
    "caption": "Instagram caption",
    "hashtags": ["#instagram", "#ai", "etc"]
  },
  "linkedin": {
    "hook": "Professional opening line",
    "content": "LinkedIn post adapted from the script",
    "hashtags": ["#linkedin", "#ai", "etc"]
  }
}`

// BuildPrompt selects the template for req and embeds the topic verbatim.
// Topic validation is the caller's job.
func BuildPrompt(req GenerationRequest) Prompt {
	if req.Type == RequestRepurpose {
		return Prompt{
			System: SystemPrompt,
			User:   fmt.Sprintf(repurposeTemplate, req.Topic),
		}
	}

	ct, _ := ResolveContentType(req.ContentType)
	return Prompt{
		System: SystemPrompt,
		User:   fmt.Sprintf(generateTemplates[ct], req.Topic),
	}
}
