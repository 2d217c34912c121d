package bank

import "github.com/xuexi-helper/study-helper/internal/domain/shared"

// chineseTable holds pinyin drills and poem-author questions.
var chineseTable = gradeTable{
	2: {
		{shared.TopicCharacters, []entry{
			{"请写出\"爸\"的拼音", "bà", shared.DifficultyEasy},
			{"请写出\"妈\"的拼音", "mā", shared.DifficultyEasy},
			{"请写出\"大\"的拼音", "dà", shared.DifficultyEasy},
			{"请写出\"小\"的拼音", "xiǎo", shared.DifficultyEasy},
			{"请写出\"天\"的拼音", "tiān", shared.DifficultyEasy},
			{"请写出\"地\"的拼音", "dì", shared.DifficultyEasy},
			{"请写出\"人\"的拼音", "rén", shared.DifficultyEasy},
			{"请写出\"口\"的拼音", "kǒu", shared.DifficultyEasy},
			{"请写出\"手\"的拼音", "shǒu", shared.DifficultyEasy},
			{"请写出\"足\"的拼音", "zú", shared.DifficultyEasy},
		}},
		{shared.TopicPoetry, []entry{
			{"《咏鹅》的作者是谁？", "骆宾王", shared.DifficultyEasy},
			{"《静夜思》的作者是谁？", "李白", shared.DifficultyEasy},
			{"《春晓》的作者是谁？", "孟浩然", shared.DifficultyEasy},
			{"《悯农》的作者是谁？", "李绅", shared.DifficultyEasy},
		}},
	},
	3: {
		{shared.TopicCharacters, []entry{
			{"请写出\"春\"的拼音", "chūn", shared.DifficultyEasy},
			{"请写出\"秋\"的拼音", "qiū", shared.DifficultyEasy},
			{"请写出\"夏\"的拼音", "xià", shared.DifficultyEasy},
			{"请写出\"冬\"的拼音", "dōng", shared.DifficultyEasy},
			{"请写出\"花\"的拼音", "huā", shared.DifficultyEasy},
			{"请写出\"草\"的拼音", "cǎo", shared.DifficultyEasy},
			{"请写出\"树\"的拼音", "shù", shared.DifficultyEasy},
			{"请写出\"木\"的拼音", "mù", shared.DifficultyEasy},
		}},
		{shared.TopicPoetry, []entry{
			{"《鹿柴》的作者是谁？", "王维", shared.DifficultyEasy},
			{"《游子吟》的作者是谁？", "孟郊", shared.DifficultyEasy},
			{"《望庐山瀑布》的作者是谁？", "李白", shared.DifficultyEasy},
			{"《绝句》的作者是谁？", "杜甫", shared.DifficultyEasy},
		}},
	},
	4: {
		{shared.TopicCharacters, []entry{
			{"请写出\"学习\"的拼音", "xué xí", shared.DifficultyEasy},
			{"请写出\"朋友\"的拼音", "péng yǒu", shared.DifficultyEasy},
			{"请写出\"高兴\"的拼音", "gāo xìng", shared.DifficultyEasy},
			{"请写出\"认真\"的拼音", "rèn zhēn", shared.DifficultyEasy},
			{"请写出\"美丽\"的拼音", "měi lì", shared.DifficultyEasy},
			{"请写出\"勤劳\"的拼音", "qín láo", shared.DifficultyEasy},
		}},
	},
	5: {
		{shared.TopicCharacters, []entry{
			{"请写出\"努力\"的拼音", "nǔ lì", shared.DifficultyEasy},
			{"请写出\"优秀\"的拼音", "yōu xiù", shared.DifficultyEasy},
			{"请写出\"成功\"的拼音", "chéng gōng", shared.DifficultyEasy},
			{"请写出\"友谊\"的拼音", "yǒu yì", shared.DifficultyEasy},
			{"请写出\"理想\"的拼音", "lǐ xiǎng", shared.DifficultyEasy},
		}},
	},
}
