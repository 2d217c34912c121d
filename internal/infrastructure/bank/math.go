package bank

import "github.com/xuexi-helper/study-helper/internal/domain/shared"

// mathTable holds arithmetic, fraction, decimal, geometry and word problems.
var mathTable = gradeTable{
	2: {
		{shared.TopicAddition, []entry{
			{"15 + 27 = ?", "42", shared.DifficultyEasy},
			{"33 + 48 = ?", "81", shared.DifficultyMedium},
			{"56 + 19 = ?", "75", shared.DifficultyMedium},
			{"24 + 37 = ?", "61", shared.DifficultyEasy},
			{"45 + 28 = ?", "73", shared.DifficultyMedium},
			{"62 + 19 = ?", "81", shared.DifficultyEasy},
			{"38 + 46 = ?", "84", shared.DifficultyMedium},
			{"29 + 55 = ?", "84", shared.DifficultyEasy},
			{"47 + 36 = ?", "83", shared.DifficultyMedium},
			{"53 + 28 = ?", "81", shared.DifficultyEasy},
			{"19 + 64 = ?", "83", shared.DifficultyEasy},
			{"35 + 49 = ?", "84", shared.DifficultyMedium},
			{"42 + 38 = ?", "80", shared.DifficultyEasy},
			{"27 + 56 = ?", "83", shared.DifficultyEasy},
			{"39 + 44 = ?", "83", shared.DifficultyEasy},
		}},
		{shared.TopicSubtraction, []entry{
			{"82 - 37 = ?", "45", shared.DifficultyMedium},
			{"65 - 28 = ?", "37", shared.DifficultyMedium},
			{"91 - 46 = ?", "45", shared.DifficultyMedium},
			{"73 - 25 = ?", "48", shared.DifficultyEasy},
			{"84 - 37 = ?", "47", shared.DifficultyMedium},
			{"56 - 19 = ?", "37", shared.DifficultyEasy},
			{"92 - 48 = ?", "44", shared.DifficultyMedium},
			{"67 - 29 = ?", "38", shared.DifficultyMedium},
			{"78 - 39 = ?", "39", shared.DifficultyEasy},
			{"85 - 27 = ?", "58", shared.DifficultyEasy},
		}},
		{shared.TopicMultiplication, []entry{
			{"7 × 8 = ?", "56", shared.DifficultyMedium},
			{"6 × 9 = ?", "54", shared.DifficultyMedium},
			{"5 × 7 = ?", "35", shared.DifficultyEasy},
			{"8 × 6 = ?", "48", shared.DifficultyEasy},
			{"9 × 4 = ?", "36", shared.DifficultyEasy},
			{"4 × 7 = ?", "28", shared.DifficultyEasy},
			{"9 × 7 = ?", "63", shared.DifficultyMedium},
			{"8 × 7 = ?", "56", shared.DifficultyMedium},
			{"6 × 7 = ?", "42", shared.DifficultyEasy},
			{"9 × 8 = ?", "72", shared.DifficultyMedium},
		}},
		{shared.TopicApplication, []entry{
			{"小明有25颗糖，分给3个小朋友，每人分到7颗，还剩几颗？", "4颗", shared.DifficultyMedium},
			{"教室里有4排桌子，每排有6张，一共有多少张？", "24张", shared.DifficultyEasy},
			{"一本书有45页，小明每天看9页，几天能看完？", "5天", shared.DifficultyEasy},
			{"苹果3元一斤，妈妈买了5斤，付了多少钱？", "15元", shared.DifficultyEasy},
			{"文具店铅笔2元一支，小明买了5支，付了多少钱？", "10元", shared.DifficultyEasy},
			{"汽车每小时行驶60公里，2小时行驶多少公里？", "120公里", shared.DifficultyMedium},
			{"小红每天读8页书，一周（7天）读多少页？", "56页", shared.DifficultyEasy},
			{"一箱牛奶有24瓶，分给8个小朋友，每人几瓶？", "3瓶", shared.DifficultyEasy},
		}},
	},
	3: {
		{shared.TopicMixed, []entry{
			{"24 + 36 ÷ 6 = ?", "30", shared.DifficultyMedium},
			{"(15 + 25) × 2 = ?", "80", shared.DifficultyMedium},
			{"48 ÷ 6 + 12 = ?", "20", shared.DifficultyEasy},
			{"100 - 25 × 3 = ?", "25", shared.DifficultyMedium},
			{"72 ÷ 8 × 4 = ?", "36", shared.DifficultyMedium},
			{"15 × 4 ÷ 3 = ?", "20", shared.DifficultyMedium},
			{"36 + 48 ÷ 6 = ?", "44", shared.DifficultyMedium},
			{"(9 + 6) × 7 = ?", "105", shared.DifficultyMedium},
			{"96 ÷ 8 + 15 = ?", "27", shared.DifficultyEasy},
			{"12 × 3 + 24 = ?", "60", shared.DifficultyEasy},
		}},
		{shared.TopicFraction, []entry{
			{"把一个蛋糕分成8块，吃了2块，吃了几分之几？", "2/8 = 1/4", shared.DifficultyEasy},
			{"把一根绳子分成5段，用了2段，用了几分之几？", "2/5", shared.DifficultyEasy},
			{"比较大小：1/2 ○ 1/3，哪个大？", "1/2 > 1/3", shared.DifficultyEasy},
			{"1/4 + 1/4 = ?", "2/4 = 1/2", shared.DifficultyEasy},
			{"3/8 + 2/8 = ?", "5/8", shared.DifficultyEasy},
			{"5/6 - 2/6 = ?", "3/6 = 1/2", shared.DifficultyEasy},
			{"2/5 + 1/5 = ?", "3/5", shared.DifficultyEasy},
			{"4/7 - 2/7 = ?", "2/7", shared.DifficultyEasy},
		}},
		{shared.TopicApplication, []entry{
			{"一本书有120页，小红第一天看了35页，第二天看了40页，还剩多少页？", "45页", shared.DifficultyEasy},
			{"小明家距学校1.5公里，每天走两个来回，共多少米？", "6000米", shared.DifficultyMedium},
			{"学校有男生120人，女生比男生少30人，女生有多少人？", "90人", shared.DifficultyEasy},
			{"小明每小时做15道题，2小时做多少道？", "30道", shared.DifficultyEasy},
			{"水果店有苹果24个，橘子8个，一共有多少个水果？", "32个", shared.DifficultyEasy},
			{"一块长方形菜地长20米，宽15米，面积是多少平方米？", "300平方米", shared.DifficultyMedium},
		}},
	},
	4: {
		{shared.TopicDecimal, []entry{
			{"3.5 + 2.8 = ?", "6.3", shared.DifficultyEasy},
			{"7.2 - 4.5 = ?", "2.7", shared.DifficultyEasy},
			{"2.5 × 4 = ?", "10", shared.DifficultyEasy},
			{"8.4 ÷ 2 = ?", "4.2", shared.DifficultyEasy},
			{"1.25 + 2.75 = ?", "4", shared.DifficultyMedium},
			{"5.6 - 2.8 = ?", "2.8", shared.DifficultyMedium},
			{"3.2 × 2.5 = ?", "8", shared.DifficultyMedium},
			{"9.6 ÷ 1.6 = ?", "6", shared.DifficultyMedium},
			{"12.5 + 7.8 = ?", "20.3", shared.DifficultyMedium},
			{"15.6 - 8.9 = ?", "6.7", shared.DifficultyMedium},
		}},
		{shared.TopicGeometry, []entry{
			{"长方形长5厘米，宽3厘米，周长是多少？", "16厘米", shared.DifficultyEasy},
			{"正方形边长4厘米，周长是多少？", "16厘米", shared.DifficultyEasy},
			{"长方形长6米，宽4米，面积是多少？", "24平方米", shared.DifficultyEasy},
			{"正方形边长5分米，面积是多少？", "25平方分米", shared.DifficultyEasy},
			{"三角形底4厘米，高3厘米，面积是多少？", "6平方厘米", shared.DifficultyMedium},
			{"平行四边形底8厘米，高5厘米，面积是多少？", "40平方厘米", shared.DifficultyMedium},
		}},
		{shared.TopicApplication, []entry{
			{"小明家距学校1.5公里，他每天步行上学，每天走多少米？", "1500米", shared.DifficultyEasy},
			{"一块长方形菜地长20米，宽15米，面积是多少平方米？", "300平方米", shared.DifficultyEasy},
			{"一根绳子长8.5米，剪去2.8米，还剩多少米？", "5.7米", shared.DifficultyEasy},
			{"一本书定价25.8元，小红付了30元，应找回多少元？", "4.2元", shared.DifficultyEasy},
			{"汽车每小时行驶60千米，2.5小时行驶多少千米？", "150千米", shared.DifficultyMedium},
		}},
	},
	5: {
		{shared.TopicFraction, []entry{
			{"1/2 + 1/4 = ?", "3/4", shared.DifficultyMedium},
			{"3/5 - 1/5 = ?", "2/5", shared.DifficultyEasy},
			{"2/3 + 1/6 = ?", "5/6", shared.DifficultyMedium},
			{"5/8 - 3/8 = ?", "2/8 = 1/4", shared.DifficultyEasy},
			{"1/2 × 1/3 = ?", "1/6", shared.DifficultyMedium},
			{"2/5 × 3/4 = ?", "6/20 = 3/10", shared.DifficultyMedium},
			{"3/4 ÷ 1/2 = ?", "3/2 = 1.5", shared.DifficultyHard},
			{"2/3 ÷ 3/4 = ?", "8/9", shared.DifficultyHard},
		}},
		{shared.TopicPercentage, []entry{
			{"100的20%是多少？", "20", shared.DifficultyEasy},
			{"50的10%是多少？", "5", shared.DifficultyEasy},
			{"200的15%是多少？", "30", shared.DifficultyEasy},
			{"把0.25化成百分数", "25%", shared.DifficultyEasy},
			{"把75%化成小数", "0.75", shared.DifficultyEasy},
			{"商店打8折，就是原价的百分之几？", "80%", shared.DifficultyEasy},
			{"一件衣服原价200元，打9折后多少钱？", "180元", shared.DifficultyMedium},
			{"某商品原价120元，先涨价10%，再降价10%，现价多少元？", "118.8元", shared.DifficultyHard},
		}},
		{shared.TopicApplication, []entry{
			{"小明有45颗糖，给了小红1/3，给了小刚2/5，还剩多少？", "12颗", shared.DifficultyHard},
			{"一项工程，甲单独做要10天，乙单独做要15天，两人合作要几天？", "6天", shared.DifficultyHard},
			{"一个水池，甲管注水要6小时注满，乙管要4小时注满，两管同时开，几小时注满？", "2.4小时", shared.DifficultyHard},
		}},
	},
}
