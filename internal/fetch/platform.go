package fetch

import (
	"net/url"
	"strings"
)

// Platform is a job board whose markup is known.
type Platform string

// Known platforms
const (
	PlatformGreenhouse     Platform = "greenhouse"
	PlatformLever          Platform = "lever"
	PlatformWorkday        Platform = "workday"
	PlatformAshby          Platform = "ashby"
	PlatformSmartRecruiter Platform = "smartrecruiters"
	PlatformUnknown        Platform = "unknown"
)

type platformProfile struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

var platformProfiles = []platformProfile{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content:  []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"workday.com", "myworkdayjobs.com"},
		content:  []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		platform: PlatformAshby,
		hosts:    []string{"ashbyhq.com"},
		content:  []string{"[class*='descriptionText']", "main"},
		noise:    []string{"[class*='applicationForm']"},
	},
	{
		platform: PlatformSmartRecruiter,
		hosts:    []string{"smartrecruiters.com"},
		content:  []string{".job-sections", "[itemprop='description']", "main"},
		noise:    []string{".job-apply", ".st-apply"},
	},
}

// noise common to every board: application forms, EEO text, share widgets
var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	"[data-testid='application-form']",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	"[data-testid='eeo']",
	".legal-disclosure",
	".self-identification",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the job board serving urlStr.
func DetectPlatform(urlStr string) Platform {
	if p := profileFor(urlStr); p != nil {
		return p.platform
	}
	return PlatformUnknown
}

func profileFor(urlStr string) *platformProfile {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil
	}
	host := strings.ToLower(parsed.Hostname())
	for i := range platformProfiles {
		for _, h := range platformProfiles[i].hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return &platformProfiles[i]
			}
		}
	}
	return nil
}

// SelectorsFor returns the content and noise selectors to use for urlStr.
func SelectorsFor(urlStr string) (content, noise []string) {
	noise = append([]string(nil), commonNoise...)
	p := profileFor(urlStr)
	if p == nil {
		return JobPostingSelectors(), noise
	}
	return p.content, append(noise, p.noise...)
}
