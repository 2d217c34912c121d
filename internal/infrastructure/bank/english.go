package bank

import "github.com/xuexi-helper/study-helper/internal/domain/shared"

// englishTable holds vocabulary meanings, grammar blanks and short reading passages.
var englishTable = gradeTable{
	2: {
		{shared.TopicVocabulary, []entry{
			{"red 的中文意思是？", "红色", shared.DifficultyEasy},
			{"blue 的中文意思是？", "蓝色", shared.DifficultyEasy},
			{"yellow 的中文意思是？", "黄色", shared.DifficultyEasy},
			{"green 的中文意思是？", "绿色", shared.DifficultyEasy},
			{"cat 的中文意思是？", "猫", shared.DifficultyEasy},
			{"dog 的中文意思是？", "狗", shared.DifficultyEasy},
			{"bird 的中文意思是？", "鸟", shared.DifficultyEasy},
			{"fish 的中文意思是？", "鱼", shared.DifficultyEasy},
			{"one 的中文意思是？", "一", shared.DifficultyEasy},
			{"two 的中文意思是？", "二", shared.DifficultyEasy},
			{"three 的中文意思是？", "三", shared.DifficultyEasy},
			{"four 的中文意思是？", "四", shared.DifficultyEasy},
			{"five 的中文意思是？", "五", shared.DifficultyEasy},
			{"six 的中文意思是？", "六", shared.DifficultyEasy},
			{"seven 的中文意思是？", "七", shared.DifficultyEasy},
			{"eight 的中文意思是？", "八", shared.DifficultyEasy},
			{"nine 的中文意思是？", "九", shared.DifficultyEasy},
			{"ten 的中文意思是？", "十", shared.DifficultyEasy},
			{"apple 的中文意思是？", "苹果", shared.DifficultyEasy},
			{"banana 的中文意思是？", "香蕉", shared.DifficultyEasy},
		}},
	},
	3: {
		{shared.TopicVocabulary, []entry{
			{"father 的中文意思是？", "爸爸", shared.DifficultyEasy},
			{"mother 的中文意思是？", "妈妈", shared.DifficultyEasy},
			{"head 的中文意思是？", "头", shared.DifficultyEasy},
			{"face 的中文意思是？", "脸", shared.DifficultyEasy},
			{"run 的中文意思是？", "跑", shared.DifficultyEasy},
			{"jump 的中文意思是？", "跳", shared.DifficultyEasy},
			{"swim 的中文意思是？", "游泳", shared.DifficultyEasy},
			{"read 的中文意思是？", "读", shared.DifficultyEasy},
		}},
		{shared.TopicGrammar, []entry{
			{"I ___ a student. (am/is/are)", "am", shared.DifficultyEasy},
			{"She ___ a teacher. (am/is/are)", "is", shared.DifficultyEasy},
			{"They ___ friends. (am/is/are)", "are", shared.DifficultyEasy},
			{"He ___ to school. (go/goes)", "goes", shared.DifficultyEasy},
			{"She ___ books every day. (read/reads)", "reads", shared.DifficultyEasy},
			{"I have ___ apple. (a/an)", "an", shared.DifficultyEasy},
			{"He has ___ umbrella. (a/an)", "an", shared.DifficultyEasy},
			{"I ___ happy yesterday. (am/is/are)", "was", shared.DifficultyMedium},
			{"They ___ at home last night. (am/is/are)", "were", shared.DifficultyMedium},
		}},
	},
	4: {
		{shared.TopicVocabulary, []entry{
			{"breakfast 的中文意思是？", "早餐", shared.DifficultyEasy},
			{"lunch 的中文意思是？", "午餐", shared.DifficultyEasy},
			{"dinner 的中文意思是？", "晚餐", shared.DifficultyEasy},
			{"school 的中文意思是？", "学校", shared.DifficultyEasy},
			{"hospital 的中文意思是？", "医院", shared.DifficultyEasy},
			{"beautiful 的中文意思是？", "美丽的", shared.DifficultyEasy},
			{"expensive 的中文意思是？", "昂贵的", shared.DifficultyEasy},
			{"cheap 的中文意思是？", "便宜的", shared.DifficultyEasy},
			{"yesterday 的中文意思是？", "昨天", shared.DifficultyEasy},
			{"tomorrow 的中文意思是？", "明天", shared.DifficultyEasy},
			{"weekend 的中文意思是？", "周末", shared.DifficultyEasy},
		}},
		{shared.TopicReading, []entry{
			{"My name is Tom. I am ten years old. I study in Sunshine Primary School. I have many friends. We often play together after school.问题：Tom几岁了？", "十岁 / 10岁", shared.DifficultyEasy},
			{"I have a pet dog. Its name is BiuBiu. It is very cute. It has white fur and two big eyes. Every morning, I walk with it in the park.问题：BiuBiu喜欢做什么？", "每天早上在公园散步 / 散步", shared.DifficultyEasy},
		}},
	},
	5: {
		{shared.TopicVocabulary, []entry{
			{"important 的中文意思是？", "重要的", shared.DifficultyEasy},
			{"different 的中文意思是？", "不同的", shared.DifficultyEasy},
			{"experience 的中文意思是？", "经历/经验", shared.DifficultyMedium},
			{"environment 的中文意思是？", "环境", shared.DifficultyMedium},
			{"technology 的中文意思是？", "技术", shared.DifficultyMedium},
		}},
		{shared.TopicGrammar, []entry{
			{"I ___ (finish) my homework already.", "have finished", shared.DifficultyMedium},
			{"She ___ (go) to Beijing last week.", "went", shared.DifficultyMedium},
			{"They ___ (play) football when it rained.", "were playing", shared.DifficultyHard},
			{"If it ___ (rain) tomorrow, I will stay at home.", "rains", shared.DifficultyHard},
			{"The book ___ (read) by Mary every day.", "is read", shared.DifficultyHard},
		}},
		{shared.TopicReading, []entry{
			{"Last summer vacation, my family went to Beijing. We visited many famous places, such as the Great Wall, Tiananmen Square and the Palace Museum.问题：Where did the family go?", "Beijing / 北京", shared.DifficultyEasy},
		}},
	},
}
