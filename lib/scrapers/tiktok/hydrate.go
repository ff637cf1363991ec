package tiktok

import (
	"encoding/json"
	"strconv"
	"strings"

	"socialpulse-backend/lib/textutil"
)

// flexCount tolerates the API's habit of mixing numeric and string
// counts (playCount vs playCountV2). Null, absent, or junk all decode
// to a nil pointer.
type flexCount struct {
	value *int64
}

func (c *flexCount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			iv := int64(f)
			c.value = &iv
		}
		return nil
	}
	c.value = &v
	return nil
}

func (c flexCount) or(fallback flexCount) *int64 {
	if c.value != nil {
		return c.value
	}
	return fallback.value
}

type itemStruct struct {
	Desc       string    `json:"desc"`
	CreateTime flexCount `json:"createTime"`
	Author     struct {
		UniqueId string `json:"uniqueId"`
	} `json:"author"`
	AuthorStats struct {
		FollowerCount flexCount `json:"followerCount"`
	} `json:"authorStats"`
	Stats struct {
		PlayCount    flexCount `json:"playCount"`
		PlayCountV2  flexCount `json:"playCountV2"`
		DiggCount    flexCount `json:"diggCount"`
		DiggCountV2  flexCount `json:"diggCountV2"`
		ShareCount   flexCount `json:"shareCount"`
		CommentCount flexCount `json:"commentCount"`
		CollectCount flexCount `json:"collectCount"`
	} `json:"stats"`
}

func (item itemStruct) stats() (videoStats, bool) {
	if item.Desc == "" && item.Author.UniqueId == "" && item.Stats.PlayCount.value == nil {
		return videoStats{}, false
	}
	return videoStats{
		Caption:   item.Desc,
		Hashtags:  textutil.ExtractHashtags(item.Desc),
		Views:     item.Stats.PlayCount.or(item.Stats.PlayCountV2),
		Likes:     item.Stats.DiggCount.or(item.Stats.DiggCountV2),
		Shares:    item.Stats.ShareCount.value,
		Comments:  item.Stats.CommentCount.value,
		Saves:     item.Stats.CollectCount.value,
		CreatedAt: item.CreateTime.value,
		Author:    item.Author.UniqueId,
		Followers: item.AuthorStats.FollowerCount.value,
	}, true
}

func parseUniversalData(text string) (videoStats, bool) {
	var data struct {
		DefaultScope map[string]json.RawMessage `json:"__DEFAULT_SCOPE__"`
	}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return videoStats{}, false
	}

	for _, scope := range []string{"webapp.video-detail", "webapp.photo-detail"} {
		raw, ok := data.DefaultScope[scope]
		if !ok {
			continue
		}
		var detail struct {
			ItemInfo struct {
				ItemStruct itemStruct `json:"itemStruct"`
			} `json:"itemInfo"`
		}
		if err := json.Unmarshal(raw, &detail); err != nil {
			continue
		}
		if stats, ok := detail.ItemInfo.ItemStruct.stats(); ok {
			return stats, true
		}
	}
	return videoStats{}, false
}

func parseSigiState(text string) (videoStats, bool) {
	var data struct {
		ItemModule map[string]itemStruct `json:"ItemModule"`
		UserModule struct {
			Stats map[string]struct {
				FollowerCount flexCount `json:"followerCount"`
			} `json:"stats"`
		} `json:"UserModule"`
	}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return videoStats{}, false
	}

	for _, item := range data.ItemModule {
		stats, ok := item.stats()
		if !ok {
			continue
		}
		if stats.Followers == nil && stats.Author != "" {
			if user, ok := data.UserModule.Stats[stats.Author]; ok {
				stats.Followers = user.FollowerCount.value
			}
		}
		return stats, true
	}
	return videoStats{}, false
}

func parseNextData(text string) (videoStats, bool) {
	var data struct {
		Props struct {
			PageProps struct {
				ItemInfo struct {
					ItemStruct itemStruct `json:"itemStruct"`
				} `json:"itemInfo"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return videoStats{}, false
	}
	return data.Props.PageProps.ItemInfo.ItemStruct.stats()
}
